package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/octonezd/altmerge/internal/utils"
)

// PrefixManifest namespaces raw source manifest bodies.
const PrefixManifest = "manifest"

// GenerateKey generates a cache key from a URL
// The key is a SHA256 hash of the normalized URL
func GenerateKey(rawURL string) string {
	normalized, err := utils.NormalizeURL(rawURL)
	if err != nil {
		normalized = rawURL
	}
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:])
}

// GenerateKeyWithPrefix generates a cache key with a prefix
func GenerateKeyWithPrefix(prefix, rawURL string) string {
	return prefix + ":" + GenerateKey(rawURL)
}

// ManifestKey generates the cache key for a source manifest URL
func ManifestKey(url string) string {
	return GenerateKeyWithPrefix(PrefixManifest, url)
}
