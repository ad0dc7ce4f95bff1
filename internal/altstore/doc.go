// Package altstore models AltStore-style app repository manifests and merges
// several of them into one.
//
// Apps and news items are kept as opaque JSON. The merger only looks at an
// app's bundleIdentifier, which is the deduplication key, and compares news
// items by deep structural equality:
//
//	docs := []*altstore.Document{first, second}
//	merged, err := altstore.Merge(docs, "My Repository")
//	if errors.Is(err, domain.ErrEmptyInput) {
//	    // nothing to merge
//	}
//
// The first occurrence of a bundle identifier wins; later apps with the same
// identifier are dropped even when their content differs. Apps without an
// identifier are always kept.
package altstore
