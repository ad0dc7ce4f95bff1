package sources

import (
	"errors"
	"fmt"

	"github.com/octonezd/altmerge/internal/domain"
)

// Sentinel errors for the sources package
var (
	// ErrNoSources indicates the file has no sources defined
	ErrNoSources = errors.New("sources file must contain at least one source")

	// ErrEmptyURL indicates a source is missing the required URL field
	ErrEmptyURL = errors.New("source URL cannot be empty")

	// ErrInvalidURL indicates a source URL is not an absolute http(s) URL
	ErrInvalidURL = fmt.Errorf("%w: source URL must be an absolute http or https URL", domain.ErrInvalidURL)

	// ErrInvalidFormat indicates the file is not valid YAML or JSON
	ErrInvalidFormat = errors.New("sources file must be valid YAML or JSON")

	// ErrFileNotFound indicates the sources file does not exist
	ErrFileNotFound = errors.New("sources file not found")

	// ErrUnsupportedExt indicates an unsupported file extension
	ErrUnsupportedExt = errors.New("unsupported file extension (use .yaml, .yml, or .json)")
)
