package hashutil

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SHA1 returns the lowercase hex SHA1 of data, the digest the mod portal
// publishes for each release.
func SHA1(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// MatchSHA1 reports whether data hashes to expected. The comparison ignores
// case. The returned string is the actual digest.
func MatchSHA1(data []byte, expected string) (bool, string) {
	actual := SHA1(data)
	return strings.EqualFold(actual, strings.TrimSpace(expected)), actual
}
