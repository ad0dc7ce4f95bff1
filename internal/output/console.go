package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const bannerWidth = 60

// Console prints human-readable progress. It is safe for concurrent use.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	ok    *color.Color
	fail  *color.Color
	quiet bool
}

// ConsoleOptions contains options for the console
type ConsoleOptions struct {
	Out     io.Writer
	NoColor bool
	Quiet   bool
}

// isTerminal is replaced in tests
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewConsole creates a console printer. Out defaults to stderr.
//
// Colour follows the writer being printed to rather than stdout: it is
// enabled only when Out is a terminal, NO_COLOR is unset and NoColor is false.
func NewConsole(opts ConsoleOptions) *Console {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}

	c := &Console{
		out:   opts.Out,
		ok:    color.New(color.FgGreen),
		fail:  color.New(color.FgRed),
		quiet: opts.Quiet,
	}
	if opts.NoColor || os.Getenv("NO_COLOR") != "" || !isTerminal(opts.Out) {
		c.ok.DisableColor()
		c.fail.DisableColor()
	} else {
		c.ok.EnableColor()
		c.fail.EnableColor()
	}
	return c
}

// Start announces the fetch phase
func (c *Console) Start() {
	c.println("Fetching manifests...")
}

// Fetching announces a single source
func (c *Console) Fetching(url string) {
	c.println("  - Fetching " + url)
}

// Found reports a successfully fetched source
func (c *Console) Found(url string, apps int) {
	c.printf("    %s Found %d app(s) in %s\n", c.ok.Sprint("✓"), apps, url)
}

// Failed reports a source that could not be fetched or parsed
func (c *Console) Failed(url string, err error) {
	c.printf("    %s Failed to fetch %s: %v\n", c.fail.Sprint("✗"), url, err)
}

// Merging announces the merge phase
func (c *Console) Merging() {
	c.println("\nMerging manifests...")
}

// Summary prints the final counts
func (c *Console) Summary(manifests, apps int, path string, dryRun bool) {
	c.printf("\n%s Successfully merged %d manifest(s)\n", c.ok.Sprint("✓"), manifests)
	c.printf("  Total apps in merged repository: %d\n", apps)
	if dryRun {
		c.printf("  Dry run: %s was not written\n", path)
		return
	}
	c.printf("  Output saved to: %s\n", path)
}

// Banner prints the header shown before the merged JSON
func (c *Console) Banner() {
	line := strings.Repeat("=", bannerWidth)
	c.printf("\n%s\nMerged Manifest:\n%s\n", line, line)
}

func (c *Console) println(s string) {
	c.printf("%s\n", s)
}

func (c *Console) printf(format string, args ...any) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}
