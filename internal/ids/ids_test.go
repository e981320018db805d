package ids

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortIDFormat(t *testing.T) {
	id := ShortID(OrderPrefix)
	assert.Regexp(t, regexp.MustCompile(`^o_[0-9a-f]{13}$`), id)
}

func TestPublicIDFormat(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^A-[A-Z2-7]{12}$`), PublicID(AttendeePrefix))
	assert.Regexp(t, regexp.MustCompile(`^O-[A-Z2-7]{12}$`), PublicID(OrderPrefix))
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := ShortID(AttendeePrefix)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestPublicIDsDoNotCollide(t *testing.T) {
	const draws = 100_000
	seen := make(map[string]struct{}, draws)
	for i := 0; i < draws; i++ {
		id := PublicID(OrderPrefix)
		_, dup := seen[id]
		require.False(t, dup, "duplicate public id %s after %d draws", id, i)
		seen[id] = struct{}{}
	}
}
