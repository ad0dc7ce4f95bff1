package testutil

import (
	"io"
	"testing"

	"github.com/octonezd/altmerge/internal/utils"
	"github.com/rs/zerolog"
)

// NewTestLogger creates a logger tagged with the test name that discards output
func NewTestLogger(t *testing.T) *utils.Logger {
	t.Helper()

	zlogger := zerolog.New(io.Discard).With().
		Timestamp().
		Str("test", t.Name()).
		Logger()

	return &utils.Logger{Logger: zlogger}
}
