package hashutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA1(t *testing.T) {
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", SHA1(nil))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", SHA1([]byte("abc")))
}

func TestMatchSHA1(t *testing.T) {
	ok, actual := MatchSHA1([]byte("abc"), "A9993E364706816ABA3E25717850C26C9CD0D89D")
	assert.True(t, ok)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", actual)

	ok, _ = MatchSHA1([]byte("abd"), "a9993e364706816aba3e25717850c26c9cd0d89d")
	assert.False(t, ok)
}
