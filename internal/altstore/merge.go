package altstore

import (
	"fmt"

	"github.com/octonezd/altmerge/internal/domain"
)

// Duplicate describes an app dropped because its bundle identifier was
// already merged from an earlier source.
type Duplicate struct {
	BundleIdentifier string
	Kept             App
	KeptSource       string
	Dropped          App
	DroppedSource    string
}

// Merger combines source manifests into one
type Merger struct {
	onDuplicate func(Duplicate)
}

// NewMerger creates a merger. onDuplicate may be nil.
func NewMerger(onDuplicate func(Duplicate)) *Merger {
	return &Merger{onDuplicate: onDuplicate}
}

// Merge merges docs with a default Merger
func Merge(docs []*Document, name string) (*Manifest, error) {
	return NewMerger(nil).Merge(docs, name)
}

type keptApp struct {
	app    App
	source string
}

// Merge combines docs, in order, into a manifest called name.
//
// Apps are deduplicated by bundle identifier with the first occurrence
// winning; apps without one are always appended. News items are appended
// unless a structurally equal item is already present. Metadata keys are
// taken from the first document only.
func (m *Merger) Merge(docs []*Document, name string) (*Manifest, error) {
	if len(docs) == 0 {
		return nil, domain.ErrEmptyInput
	}

	result := NewManifest(name)
	seen := make(map[string]keptApp)

	for i, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("document %d is nil", i)
		}

		apps, err := doc.Apps()
		if err != nil {
			return nil, err
		}
		for _, app := range apps {
			id := app.BundleIdentifier
			if id == "" {
				result.Apps = append(result.Apps, app)
				continue
			}
			if kept, ok := seen[id]; ok {
				m.reportDuplicate(Duplicate{
					BundleIdentifier: id,
					Kept:             kept.app,
					KeptSource:       kept.source,
					Dropped:          app,
					DroppedSource:    doc.Source,
				})
				continue
			}
			seen[id] = keptApp{app: app, source: doc.Source}
			result.Apps = append(result.Apps, app)
		}

		news, err := doc.News()
		if err != nil {
			return nil, err
		}
		for _, item := range news {
			if !containsNews(result.News, item) {
				result.News = append(result.News, item)
			}
		}
	}

	first := docs[0]
	for _, key := range MetadataKeys {
		if raw, ok := first.Field(key); ok {
			result.SetMetadata(key, raw)
		}
	}

	return result, nil
}

func (m *Merger) reportDuplicate(dup Duplicate) {
	if m.onDuplicate != nil {
		m.onDuplicate(dup)
	}
}

func containsNews(items []NewsItem, item NewsItem) bool {
	for _, existing := range items {
		if existing.Equal(item) {
			return true
		}
	}
	return false
}
