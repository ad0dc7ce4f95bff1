// Package sources loads the list of AltStore manifests to merge from a
// YAML or JSON file.
//
// # File Format
//
//	name: "OctoNezd's Merged Repository"
//	output: merged_altstore.json
//	sources:
//	  - url: https://github.com/OctoNezd/oldlander/releases/latest/download/altStoreManifest.json
//	  - url: https://github.com/OctoNezd/VNDS-LOVE-TOUCH/releases/latest/download/altStoreManifest.json
//
// The order of entries is the merge order: on conflicting bundle
// identifiers the earlier source wins.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - ErrNoSources: file has no sources defined
//   - ErrEmptyURL: source is missing required URL field
//   - ErrInvalidURL: source URL is not http or https
//   - ErrInvalidFormat: file is not valid YAML/JSON
//   - ErrFileNotFound: sources file does not exist
//   - ErrUnsupportedExt: unsupported file extension
package sources
