// Package ids generates the externally shareable identifiers of orders and attendees.
package ids

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

const (
	OrderPrefix    = "o"
	AttendeePrefix = "a"

	// publicIDLength base32 characters carry 60 random bits.
	publicIDLength = 12
)

var publicEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ShortID returns a lowercase id such as "o_3f9c1a7e20b44".
func ShortID(prefix string) string {
	return prefix + "_" + compact()[:13]
}

// PublicID returns an uppercase id such as "O-K3QZ7MV2XH4D". The value is
// stored in a unique column.
func PublicID(prefix string) string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return strings.ToUpper(prefix) + "-" + publicEncoding.EncodeToString(b[:])[:publicIDLength]
}

func compact() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
