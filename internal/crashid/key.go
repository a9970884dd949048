package crashid

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Key returns a deterministic grouping key for the identifier.
// Format: type|location|hash, where hash covers both parts.
func (id Identifier) Key() string {
	base := fmt.Sprintf("%s|%s", id.Type, id.Location)
	sum := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s|%s", base, hex.EncodeToString(sum[:4]))
}
