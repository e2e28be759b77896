// Package sha256 fingerprints URL sets with SHA-256.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// URLSet returns the hex digest of urls, independent of their order. Two
// sitemaps that list the same pages produce the same digest.
func URLSet(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	sorted := slices.Clone(urls)
	slices.Sort(sorted)
	h := sha256.New()
	for _, u := range sorted {
		h.Write([]byte(u))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
