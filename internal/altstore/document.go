package altstore

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/octonezd/altmerge/internal/domain"
)

// Recognized manifest fields
const (
	FieldName        = "name"
	FieldIdentifier  = "identifier"
	FieldIconURL     = "iconURL"
	FieldApps        = "apps"
	FieldNews        = "news"
	FieldSourceURL   = "sourceURL"
	FieldSubtitle    = "subtitle"
	FieldDescription = "description"
	FieldHeaderURL   = "headerURL"
	FieldWebsite     = "website"
	FieldTintColor   = "tintColor"

	fieldBundleIdentifier = "bundleIdentifier"
)

var errNotObject = errors.New("document is not a JSON object")

// Document is a parsed source manifest. Fields are held as raw JSON so that
// unrecognized content passes through untouched.
type Document struct {
	// Source is the location the document was read from
	Source string
	fields map[string]json.RawMessage
}

// Parse parses data as a manifest document. Anything other than a JSON
// object is rejected with a *domain.ParseError.
func Parse(source string, data []byte) (*Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, domain.NewParseError(source, err)
	}
	if fields == nil {
		return nil, domain.NewParseError(source, errNotObject)
	}

	return &Document{Source: source, fields: fields}, nil
}

// Has reports whether the document carries key
func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// Field returns the raw value stored under key
func (d *Document) Field(key string) (json.RawMessage, bool) {
	raw, ok := d.fields[key]
	return raw, ok
}

// Name returns the repository name, or an empty string when absent or not a string
func (d *Document) Name() string {
	raw, ok := d.fields[FieldName]
	if !ok {
		return ""
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return ""
	}
	return name
}

// Apps returns the document's apps in order. A missing or null field yields
// no apps.
func (d *Document) Apps() ([]App, error) {
	entries, err := d.entries(FieldApps)
	if err != nil {
		return nil, err
	}

	apps := make([]App, 0, len(entries))
	for i, raw := range entries {
		app, err := parseApp(raw)
		if err != nil {
			return nil, domain.NewMalformedEntryError(d.Source, FieldApps, i, err.Error())
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// News returns the document's news items in order. A missing or null field
// yields no items.
func (d *Document) News() ([]NewsItem, error) {
	entries, err := d.entries(FieldNews)
	if err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, len(entries))
	for i, raw := range entries {
		item, err := parseNewsItem(raw)
		if err != nil {
			return nil, domain.NewMalformedEntryError(d.Source, FieldNews, i, err.Error())
		}
		items = append(items, item)
	}
	return items, nil
}

// AppCount returns the number of entries in the apps field, or 0 when it is
// missing or not an array.
func (d *Document) AppCount() int {
	entries, err := d.entries(FieldApps)
	if err != nil {
		return 0
	}
	return len(entries)
}

func (d *Document) entries(field string) ([]json.RawMessage, error) {
	raw, ok := d.fields[field]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, domain.NewMalformedEntryError(d.Source, field, -1, "field is not an array")
	}
	return entries, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
