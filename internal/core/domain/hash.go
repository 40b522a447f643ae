package domain

import (
	"crypto/md5" //nolint:gosec // content addressing, not security
	"encoding/hex"
)

// ContentHash returns the hex MD5 digest of text.
// The same text always yields the same hash across runs and hosts.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // content addressing, not security
	return hex.EncodeToString(sum[:])
}
