package altstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
)

// Fixed values of every merged manifest
const (
	MergedIdentifier = "com.octonezd.merged-repo"
	DefaultIconURL   = "https://octonezd.me/octo-ios-repo/icon.jpg"
)

// MetadataKeys are copied from the first source manifest when present there.
var MetadataKeys = []string{
	FieldSourceURL,
	FieldSubtitle,
	FieldDescription,
	FieldIconURL,
	FieldHeaderURL,
	FieldWebsite,
	FieldTintColor,
}

var (
	errEntryNotObject    = errors.New("entry is not an object")
	errBundleIDNotString = errors.New("bundleIdentifier is not a string")
)

// App is a single application entry. Only BundleIdentifier is interpreted;
// Raw is written back verbatim.
type App struct {
	BundleIdentifier string
	Raw              json.RawMessage
}

// MarshalJSON implements json.Marshaler
func (a App) MarshalJSON() ([]byte, error) {
	return a.Raw, nil
}

func parseApp(raw json.RawMessage) (App, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return App{}, errEntryNotObject
	}

	app := App{Raw: raw}
	if id, ok := obj[fieldBundleIdentifier]; ok && !isNull(id) {
		if err := json.Unmarshal(id, &app.BundleIdentifier); err != nil {
			return App{}, errBundleIDNotString
		}
	}
	return app, nil
}

// NewsItem is a news entry compared by deep structural equality
type NewsItem struct {
	Raw   json.RawMessage
	value map[string]any
}

// MarshalJSON implements json.Marshaler
func (n NewsItem) MarshalJSON() ([]byte, error) {
	return n.Raw, nil
}

// Equal reports whether both items hold the same JSON value. Object key
// order is ignored, array order is not. Numbers compare by exact value.
func (n NewsItem) Equal(other NewsItem) bool {
	return jsonEqual(n.value, other.value)
}

func parseNewsItem(raw json.RawMessage) (NewsItem, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value map[string]any
	if err := dec.Decode(&value); err != nil || value == nil {
		return NewsItem{}, errEntryNotObject
	}
	return NewsItem{Raw: raw, value: value}, nil
}

// jsonEqual compares values decoded with json.Decoder.UseNumber
func jsonEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !jsonEqual(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !jsonEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case json.Number:
		bv, ok := b.(json.Number)
		if !ok {
			return false
		}
		return numberEqual(av, bv)
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func numberEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	x, okX := new(big.Rat).SetString(a.String())
	y, okY := new(big.Rat).SetString(b.String())
	if !okX || !okY {
		return false
	}
	return x.Cmp(y) == 0
}

// Manifest is the merged repository. Field order matches the serialized key
// order.
type Manifest struct {
	Name        string          `json:"name"`
	Identifier  string          `json:"identifier"`
	IconURL     json.RawMessage `json:"iconURL"`
	Apps        []App           `json:"apps"`
	News        []NewsItem      `json:"news"`
	SourceURL   json.RawMessage `json:"sourceURL,omitempty"`
	Subtitle    json.RawMessage `json:"subtitle,omitempty"`
	Description json.RawMessage `json:"description,omitempty"`
	HeaderURL   json.RawMessage `json:"headerURL,omitempty"`
	Website     json.RawMessage `json:"website,omitempty"`
	TintColor   json.RawMessage `json:"tintColor,omitempty"`
}

// NewManifest returns an empty merged manifest with the fixed identifier and
// default icon.
func NewManifest(name string) *Manifest {
	icon, _ := json.Marshal(DefaultIconURL)
	return &Manifest{
		Name:       name,
		Identifier: MergedIdentifier,
		IconURL:    icon,
		Apps:       []App{},
		News:       []NewsItem{},
	}
}

// Metadata returns the raw value of one of MetadataKeys
func (m *Manifest) Metadata(key string) (json.RawMessage, bool) {
	field := m.metadataField(key)
	if field == nil || len(*field) == 0 {
		return nil, false
	}
	return *field, true
}

// SetMetadata stores raw under one of MetadataKeys. Other keys are ignored.
func (m *Manifest) SetMetadata(key string, raw json.RawMessage) {
	if field := m.metadataField(key); field != nil {
		*field = raw
	}
}

func (m *Manifest) metadataField(key string) *json.RawMessage {
	switch key {
	case FieldSourceURL:
		return &m.SourceURL
	case FieldSubtitle:
		return &m.Subtitle
	case FieldDescription:
		return &m.Description
	case FieldIconURL:
		return &m.IconURL
	case FieldHeaderURL:
		return &m.HeaderURL
	case FieldWebsite:
		return &m.Website
	case FieldTintColor:
		return &m.TintColor
	}
	return nil
}
