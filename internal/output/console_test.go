package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole() (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewConsole(ConsoleOptions{Out: &buf, NoColor: true}), &buf
}

func TestConsole_Lines(t *testing.T) {
	c, buf := newTestConsole()

	c.Start()
	c.Fetching("https://example.com/a.json")
	c.Found("https://example.com/a.json", 2)
	c.Fetching("https://example.com/b.json")
	c.Failed("https://example.com/b.json", errors.New("status 404"))
	c.Merging()
	c.Summary(1, 2, "merged_altstore.json", false)

	out := buf.String()
	assert.Contains(t, out, "Fetching manifests...\n")
	assert.Contains(t, out, "  - Fetching https://example.com/a.json\n")
	assert.Contains(t, out, "    ✓ Found 2 app(s) in https://example.com/a.json\n")
	assert.Contains(t, out, "    ✗ Failed to fetch https://example.com/b.json: status 404\n")
	assert.Contains(t, out, "\nMerging manifests...\n")
	assert.Contains(t, out, "✓ Successfully merged 1 manifest(s)\n")
	assert.Contains(t, out, "  Total apps in merged repository: 2\n")
	assert.Contains(t, out, "  Output saved to: merged_altstore.json\n")
}

func TestConsole_DryRunSummary(t *testing.T) {
	c, buf := newTestConsole()

	c.Summary(2, 5, "out.json", true)

	assert.Contains(t, buf.String(), "Dry run: out.json was not written")
	assert.NotContains(t, buf.String(), "Output saved to")
}

func TestConsole_Banner(t *testing.T) {
	c, buf := newTestConsole()

	c.Banner()

	line := strings.Repeat("=", 60)
	assert.Equal(t, "\n"+line+"\nMerged Manifest:\n"+line+"\n", buf.String())
}

func TestConsole_Quiet(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(ConsoleOptions{Out: &buf, Quiet: true})

	c.Start()
	c.Summary(1, 1, "x", false)

	assert.Empty(t, buf.String())
}

func TestConsole_ConcurrentLinesDoNotInterleave(t *testing.T) {
	c, buf := newTestConsole()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Found(fmt.Sprintf("https://example.com/%d.json", i), i)
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "    ✓ Found "), line)
	}
}

func withTerminal(t *testing.T, terminal bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(io.Writer) bool { return terminal }
	t.Cleanup(func() { isTerminal = orig })
}

func TestConsole_ColorFollowsWriter(t *testing.T) {
	const escape = "\x1b["

	tests := []struct {
		name     string
		terminal bool
		noColor  bool
		env      string
		want     bool
	}{
		{"terminal", true, false, "", true},
		{"redirected", false, false, "", false},
		{"disabled by option", true, true, "", false},
		{"disabled by NO_COLOR", true, false, "1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withTerminal(t, tt.terminal)
			t.Setenv("NO_COLOR", tt.env)

			var buf bytes.Buffer
			c := NewConsole(ConsoleOptions{Out: &buf, NoColor: tt.noColor})
			c.Found("https://example.com/a.json", 1)
			c.Failed("https://example.com/b.json", errors.New("HTTP 404"))

			if tt.want {
				assert.Contains(t, buf.String(), escape)
			} else {
				assert.NotContains(t, buf.String(), escape)
			}
		})
	}
}

func TestConsole_RegularFileIsNotTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "log")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, isTerminal(f))
	assert.False(t, isTerminal(&bytes.Buffer{}))

	c := NewConsole(ConsoleOptions{Out: f})
	c.Found("https://example.com/a.json", 1)

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\x1b[")
	assert.Contains(t, string(data), "✓ Found 1 app(s)")
}
