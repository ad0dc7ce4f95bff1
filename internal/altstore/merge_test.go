package altstore

import (
	"encoding/json"
	"testing"

	"github.com/octonezd/altmerge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source, content string) *Document {
	t.Helper()
	doc, err := Parse(source, []byte(content))
	require.NoError(t, err)
	return doc
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func bundleIDs(m *Manifest) []string {
	ids := make([]string, 0, len(m.Apps))
	for _, app := range m.Apps {
		ids = append(ids, app.BundleIdentifier)
	}
	return ids
}

func TestMerge_EmptyInput(t *testing.T) {
	result, err := Merge(nil, "Repo")

	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Nil(t, result)

	result, err = Merge([]*Document{}, "Repo")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
	assert.Nil(t, result)
}

func TestMerge_FirstSeenWins(t *testing.T) {
	a := mustParse(t, "a", `{"apps":[{"bundleIdentifier":"x","v":1}]}`)
	b := mustParse(t, "b", `{"apps":[{"bundleIdentifier":"x","v":2},{"bundleIdentifier":"y","v":1}]}`)

	result, err := Merge([]*Document{a, b}, "Repo")
	require.NoError(t, err)

	assert.JSONEq(t,
		`[{"bundleIdentifier":"x","v":1},{"bundleIdentifier":"y","v":1}]`,
		toJSON(t, result.Apps))
}

func TestMerge_OrderDecidesWinner(t *testing.T) {
	a := mustParse(t, "a", `{"apps":[{"bundleIdentifier":"x","v":1}]}`)
	b := mustParse(t, "b", `{"apps":[{"bundleIdentifier":"x","v":2}]}`)

	result, err := Merge([]*Document{b, a}, "Repo")
	require.NoError(t, err)

	assert.JSONEq(t, `[{"bundleIdentifier":"x","v":2}]`, toJSON(t, result.Apps))
}

func TestMerge_UnidentifiedAppsNeverDeduplicated(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing identifier", `{"apps":[{"name":"Tool"}]}`},
		{"empty identifier", `{"apps":[{"name":"Tool","bundleIdentifier":""}]}`},
		{"null identifier", `{"apps":[{"name":"Tool","bundleIdentifier":null}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustParse(t, "a", tt.content)
			b := mustParse(t, "b", tt.content)

			result, err := Merge([]*Document{a, b}, "Repo")
			require.NoError(t, err)

			require.Len(t, result.Apps, 2)
			assert.Equal(t, toJSON(t, result.Apps[0]), toJSON(t, result.Apps[1]))
		})
	}
}

func TestMerge_UnidentifiedAppsDoNotClashWithIdentified(t *testing.T) {
	doc := mustParse(t, "a", `{"apps":[
		{"bundleIdentifier":"x"},
		{"name":"anon"},
		{"bundleIdentifier":"x","v":2},
		{"name":"anon"}
	]}`)

	result, err := Merge([]*Document{doc}, "Repo")
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "", ""}, bundleIDs(result))
}

func TestMerge_SingleManifest(t *testing.T) {
	doc := mustParse(t, "a", `{
		"name": "Source",
		"apps": [
			{"bundleIdentifier":"a","name":"A"},
			{"bundleIdentifier":"b","name":"B"},
			{"bundleIdentifier":"a","name":"A again"}
		],
		"news": [
			{"title":"one","identifier":"n1"},
			{"title":"two","identifier":"n2"},
			{"identifier":"n1","title":"one"}
		]
	}`)

	result, err := Merge([]*Document{doc}, "Repo")
	require.NoError(t, err)

	assert.JSONEq(t,
		`[{"bundleIdentifier":"a","name":"A"},{"bundleIdentifier":"b","name":"B"}]`,
		toJSON(t, result.Apps))
	assert.JSONEq(t,
		`[{"title":"one","identifier":"n1"},{"title":"two","identifier":"n2"}]`,
		toJSON(t, result.News))
}

func TestMerge_NewsDeduplicatedAcrossManifests(t *testing.T) {
	a := mustParse(t, "a", `{"news":[{"title":"hello"}]}`)
	b := mustParse(t, "b", `{"news":[{"title":"hello"},{"title":"world"}]}`)

	result, err := Merge([]*Document{a, b}, "Repo")
	require.NoError(t, err)

	assert.JSONEq(t, `[{"title":"hello"},{"title":"world"}]`, toJSON(t, result.News))
}

func TestMerge_NewsStructuralEquality(t *testing.T) {
	tests := []struct {
		name  string
		first string
		other string
		want  int
	}{
		{"key order ignored", `{"a":1,"b":2}`, `{"b":2,"a":1}`, 1},
		{"nested key order ignored", `{"x":{"a":1,"b":[1,2]}}`, `{"x":{"b":[1,2],"a":1}}`, 1},
		{"array order matters", `{"tags":[1,2]}`, `{"tags":[2,1]}`, 2},
		{"numbers compared by value", `{"n":1}`, `{"n":1.0}`, 1},
		{"exponent equals integer", `{"n":1000}`, `{"n":1e3}`, 1},
		{"large integers stay distinct", `{"id":9007199254740993}`, `{"id":9007199254740992}`, 2},
		{"large integers equal", `{"id":9007199254740993}`, `{"id":9007199254740993.0}`, 1},
		{"close decimals stay distinct", `{"n":0.1000000000000000001}`, `{"n":0.1}`, 2},
		{"number is not a string", `{"n":1}`, `{"n":"1"}`, 2},
		{"null is not false", `{"n":null}`, `{"n":false}`, 2},
		{"different values", `{"title":"a"}`, `{"title":"b"}`, 2},
		{"extra key", `{"title":"a"}`, `{"title":"a","x":null}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustParse(t, "a", `{"news":[`+tt.first+`]}`)
			b := mustParse(t, "b", `{"news":[`+tt.other+`]}`)

			result, err := Merge([]*Document{a, b}, "Repo")
			require.NoError(t, err)
			assert.Len(t, result.News, tt.want)
		})
	}
}

func TestMerge_FixedIdentifierAndName(t *testing.T) {
	doc := mustParse(t, "a", `{"name":"Other","identifier":"com.example.other","apps":[]}`)

	result, err := Merge([]*Document{doc}, "OctoNezd's Merged Repository")
	require.NoError(t, err)

	assert.Equal(t, MergedIdentifier, result.Identifier)
	assert.Equal(t, "com.octonezd.merged-repo", result.Identifier)
	assert.Equal(t, "OctoNezd's Merged Repository", result.Name)
}

func TestMerge_IconURL(t *testing.T) {
	t.Run("default when first manifest has none", func(t *testing.T) {
		a := mustParse(t, "a", `{"apps":[]}`)
		b := mustParse(t, "b", `{"iconURL":"https://b.example/icon.png"}`)

		result, err := Merge([]*Document{a, b}, "Repo")
		require.NoError(t, err)

		assert.JSONEq(t, `"`+DefaultIconURL+`"`, string(result.IconURL))
	})

	t.Run("first manifest overrides default", func(t *testing.T) {
		a := mustParse(t, "a", `{"iconURL":"https://a.example/icon.png"}`)
		b := mustParse(t, "b", `{"iconURL":"https://b.example/icon.png"}`)

		result, err := Merge([]*Document{a, b}, "Repo")
		require.NoError(t, err)

		assert.JSONEq(t, `"https://a.example/icon.png"`, string(result.IconURL))
	})
}

func TestMerge_MetadataFromFirstManifestOnly(t *testing.T) {
	a := mustParse(t, "a", `{
		"subtitle": "From A",
		"tintColor": "#ff0000",
		"sourceURL": "https://a.example/repo.json",
		"featuredApps": ["x"]
	}`)
	b := mustParse(t, "b", `{
		"subtitle": "From B",
		"website": "https://b.example",
		"headerURL": "https://b.example/header.png",
		"description": "B"
	}`)

	result, err := Merge([]*Document{a, b}, "Repo")
	require.NoError(t, err)

	subtitle, ok := result.Metadata(FieldSubtitle)
	require.True(t, ok)
	assert.JSONEq(t, `"From A"`, string(subtitle))

	_, ok = result.Metadata(FieldWebsite)
	assert.False(t, ok)
	_, ok = result.Metadata(FieldHeaderURL)
	assert.False(t, ok)
	_, ok = result.Metadata(FieldDescription)
	assert.False(t, ok)

	assert.NotContains(t, toJSON(t, result), "featuredApps")
}

func TestMerge_NullMetadataIsCopied(t *testing.T) {
	a := mustParse(t, "a", `{"tintColor":null,"iconURL":null}`)

	result, err := Merge([]*Document{a}, "Repo")
	require.NoError(t, err)

	out := toJSON(t, result)
	assert.Contains(t, out, `"tintColor":null`)
	assert.Contains(t, out, `"iconURL":null`)
}

func TestMerge_SerializedKeyOrder(t *testing.T) {
	t.Run("empty manifest", func(t *testing.T) {
		result, err := Merge([]*Document{mustParse(t, "a", `{}`)}, "R")
		require.NoError(t, err)

		assert.Equal(t,
			`{"name":"R","identifier":"com.octonezd.merged-repo","iconURL":"https://octonezd.me/octo-ios-repo/icon.jpg","apps":[],"news":[]}`,
			toJSON(t, result))
	})

	t.Run("metadata follows news", func(t *testing.T) {
		doc := mustParse(t, "a", `{"tintColor":"#000","sourceURL":"https://a.example","website":"https://w.example"}`)
		result, err := Merge([]*Document{doc}, "R")
		require.NoError(t, err)

		assert.Equal(t,
			`{"name":"R","identifier":"com.octonezd.merged-repo","iconURL":"https://octonezd.me/octo-ios-repo/icon.jpg","apps":[],"news":[],"sourceURL":"https://a.example","website":"https://w.example","tintColor":"#000"}`,
			toJSON(t, result))
	})
}

func TestMerge_DistinctIdentifierCount(t *testing.T) {
	docs := []*Document{
		mustParse(t, "a", `{"apps":[{"bundleIdentifier":"a"},{"bundleIdentifier":"b"},{"name":"anon"}]}`),
		mustParse(t, "b", `{"apps":[{"bundleIdentifier":"b"},{"bundleIdentifier":"c"},{"bundleIdentifier":"a"}]}`),
		mustParse(t, "c", `{"apps":[{"bundleIdentifier":"d"},{"bundleIdentifier":"c"}]}`),
		mustParse(t, "d", `{"name":"no apps"}`),
	}

	unique := make(map[string]struct{})
	for _, doc := range docs {
		apps, err := doc.Apps()
		require.NoError(t, err)
		for _, app := range apps {
			if app.BundleIdentifier != "" {
				unique[app.BundleIdentifier] = struct{}{}
			}
		}
	}

	result, err := Merge(docs, "Repo")
	require.NoError(t, err)

	merged := make(map[string]struct{})
	for _, id := range bundleIDs(result) {
		if id != "" {
			merged[id] = struct{}{}
		}
	}
	assert.Len(t, merged, len(unique))
	assert.Equal(t, []string{"a", "b", "", "c", "d"}, bundleIDs(result))
}

func TestMerge_MissingOrNullCollections(t *testing.T) {
	docs := []*Document{
		mustParse(t, "a", `{"name":"A"}`),
		mustParse(t, "b", `{"apps":null,"news":null}`),
		mustParse(t, "c", `{"apps":[{"bundleIdentifier":"c"}]}`),
	}

	result, err := Merge(docs, "Repo")
	require.NoError(t, err)

	assert.Equal(t, []string{"c"}, bundleIDs(result))
	assert.Empty(t, result.News)
	assert.Contains(t, toJSON(t, result), `"news":[]`)
}

func TestMerge_MalformedEntries(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
		wantIndex int
	}{
		{"apps not an array", `{"apps":{"bundleIdentifier":"x"}}`, FieldApps, -1},
		{"app not an object", `{"apps":[{"bundleIdentifier":"x"},"y"]}`, FieldApps, 1},
		{"null app", `{"apps":[null]}`, FieldApps, 0},
		{"numeric bundle identifier", `{"apps":[{"bundleIdentifier":42}]}`, FieldApps, 0},
		{"news not an array", `{"news":"hello"}`, FieldNews, -1},
		{"news item not an object", `{"news":[{"title":"a"},["b"]]}`, FieldNews, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := mustParse(t, "good", `{"apps":[{"bundleIdentifier":"ok"}]}`)
			bad := mustParse(t, "bad.json", tt.content)

			result, err := Merge([]*Document{good, bad}, "Repo")

			assert.Nil(t, result)
			var malformed *domain.MalformedEntryError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "bad.json", malformed.Source)
			assert.Equal(t, tt.wantField, malformed.Field)
			assert.Equal(t, tt.wantIndex, malformed.Index)
		})
	}
}

func TestMerge_NilDocument(t *testing.T) {
	_, err := Merge([]*Document{nil}, "Repo")
	assert.Error(t, err)
}

func TestMerger_OnDuplicate(t *testing.T) {
	a := mustParse(t, "a", `{"apps":[{"bundleIdentifier":"x","version":"1.0.0"}]}`)
	b := mustParse(t, "b", `{"apps":[{"bundleIdentifier":"x","version":"1.1.0"},{"bundleIdentifier":"y"}]}`)
	c := mustParse(t, "c", `{"apps":[{"bundleIdentifier":"y"}]}`)

	var dups []Duplicate
	merger := NewMerger(func(d Duplicate) {
		dups = append(dups, d)
	})

	result, err := merger.Merge([]*Document{a, b, c}, "Repo")
	require.NoError(t, err)
	require.Len(t, result.Apps, 2)

	require.Len(t, dups, 2)
	assert.Equal(t, "x", dups[0].BundleIdentifier)
	assert.Equal(t, "a", dups[0].KeptSource)
	assert.Equal(t, "b", dups[0].DroppedSource)
	assert.Equal(t, "1.0.0", dups[0].Kept.Version())
	assert.Equal(t, "1.1.0", dups[0].Dropped.Version())

	assert.Equal(t, "y", dups[1].BundleIdentifier)
	assert.Equal(t, "b", dups[1].KeptSource)
	assert.Equal(t, "c", dups[1].DroppedSource)
}

func TestMerge_DoesNotShareSeenSetBetweenCalls(t *testing.T) {
	merger := NewMerger(nil)
	doc := mustParse(t, "a", `{"apps":[{"bundleIdentifier":"x"}]}`)

	first, err := merger.Merge([]*Document{doc}, "Repo")
	require.NoError(t, err)
	second, err := merger.Merge([]*Document{doc}, "Repo")
	require.NoError(t, err)

	assert.Len(t, first.Apps, 1)
	assert.Len(t, second.Apps, 1)
}

func TestMerge_AppContentCarriedVerbatim(t *testing.T) {
	doc := mustParse(t, "a", `{"apps":[{"bundleIdentifier":"x","name":"Ünïcödé","size":12345678901,"versions":[{"version":"2.0"}],"extra":{"nested":[1,"two",null]}}]}`)

	result, err := Merge([]*Document{doc}, "Repo")
	require.NoError(t, err)

	assert.Equal(t,
		`[{"bundleIdentifier":"x","name":"Ünïcödé","size":12345678901,"versions":[{"version":"2.0"}],"extra":{"nested":[1,"two",null]}}]`,
		toJSON(t, result.Apps))
}
