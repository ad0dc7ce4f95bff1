package output

import (
	"context"
	"fmt"
	"os"

	"github.com/octonezd/altmerge/internal/altstore"
	"github.com/octonezd/altmerge/internal/domain"
	"github.com/octonezd/altmerge/internal/utils"
)

// DefaultPath is the merged manifest file name used when none is configured
const DefaultPath = "merged_altstore.json"

// Writer handles writing the merged manifest to the filesystem
type Writer struct {
	path   string
	dryRun bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	Path   string
	DryRun bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	return &Writer{
		path:   utils.ExpandPath(opts.Path),
		dryRun: opts.DryRun,
	}
}

// Write encodes m and saves it, replacing any existing file.
// In dry-run mode nothing is written.
func (w *Writer) Write(ctx context.Context, m *altstore.Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}

	if w.dryRun {
		return nil
	}

	if err := utils.EnsureDir(w.path); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrWriteFailed, w.path, err)
	}

	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrWriteFailed, w.path, err)
	}

	return nil
}

// Path returns the output file path
func (w *Writer) Path() string {
	return w.path
}

// DryRun reports whether writes are skipped
func (w *Writer) DryRun() bool {
	return w.dryRun
}
