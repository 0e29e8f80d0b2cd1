package transcache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key namespaces in the backing store. Entries and popularity counters
// expire independently, so they never share a prefix.
const (
	EntryPrefix   = "trans:"
	CounterPrefix = "count:"
	HitsKey       = "stats:cache_hits"
	MissesKey     = "stats:cache_misses"
)

// langEscaper keeps ':' out of the language fields so the digest input
// splits unambiguously at its last two separators. Valid codes pass through
// unchanged.
var langEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Fingerprint computes the SHA-256 digest of a (text, source, target) triple.
func Fingerprint(text, sourceLang, targetLang string) string {
	input := text + ":" + langEscaper.Replace(sourceLang) + ":" + langEscaper.Replace(targetLang)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// CacheKey returns the backing-store key of the cache entry for a fingerprint.
func CacheKey(fingerprint string) string {
	return EntryPrefix + fingerprint
}

// CountKey returns the backing-store key of the popularity counter for a fingerprint.
func CountKey(fingerprint string) string {
	return CounterPrefix + CacheKey(fingerprint)
}
