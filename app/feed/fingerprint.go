package feed

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLength = 28

// Fingerprint digests an ordered tuple. Each part is terminated with "|" so
// ("ab", "c") and ("a", "bc") never collide.
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte("|"))
	}
	return hex.EncodeToString(h.Sum(nil))[:fingerprintLength]
}

// SeenKey gates re-processing of a search feed item for one subject.
func SeenKey(subject string, item Item) string {
	return Fingerprint(subject, item.Link, item.Title)
}

// BackstopSeenKey gates re-processing of a general feed item.
func BackstopSeenKey(item Item) string {
	return Fingerprint("G", item.Link, item.Title)
}

// HitID keys a hit record; the same subject and URL always map to one hit.
func HitID(subject, url string) string {
	return Fingerprint("H", subject, url)
}
