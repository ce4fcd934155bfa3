package manifest

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a fast, non-cryptographic 64-bit hash of content,
// rendered as 16 lowercase hex digits. It is used for change detection and
// dedup checks, never for security decisions.
func Fingerprint(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
