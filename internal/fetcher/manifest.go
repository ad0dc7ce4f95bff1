package fetcher

import (
	"context"
	"time"

	"github.com/octonezd/altmerge/internal/altstore"
	"github.com/octonezd/altmerge/internal/domain"
	"github.com/octonezd/altmerge/internal/utils"
)

// ManifestFetcher retrieves and parses source manifests
type ManifestFetcher struct {
	client  domain.Fetcher
	timeout time.Duration
	logger  *utils.Logger
}

// NewManifestFetcher creates a ManifestFetcher. A non-positive timeout
// leaves the deadline to the underlying client.
func NewManifestFetcher(client domain.Fetcher, timeout time.Duration, logger *utils.Logger) *ManifestFetcher {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &ManifestFetcher{
		client:  client,
		timeout: timeout,
		logger:  logger.WithComponent("fetcher"),
	}
}

// Fetch retrieves url and parses it as a manifest document.
//
// Transport and HTTP failures are returned as *domain.NetworkError, content
// that is not a JSON object as *domain.ParseError.
func (f *ManifestFetcher) Fetch(ctx context.Context, url string) (*altstore.Document, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	logger := f.logger.WithURL(url)

	start := time.Now()
	resp, err := f.client.Get(ctx, url)
	if err != nil {
		if !domain.IsNetworkError(err) && !domain.IsParseError(err) {
			err = domain.NewNetworkError(url, 0, err)
		}
		logger.Debug().Err(err).Dur("took", time.Since(start)).Msg("Fetch failed")
		return nil, err
	}

	logger.Debug().
		Int("bytes", len(resp.Body)).
		Bool("from_cache", resp.FromCache).
		Dur("took", time.Since(start)).
		Msg("Fetched manifest")

	return altstore.Parse(url, resp.Body)
}
