// Package agecategory evaluates age category rules against an attendee's
// birth date and gender.
package agecategory

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Shivanand-hulikatti/attendee-registration/internal/model"
)

// ErrInvalidDocument is returned by ParseDocument when the stored rule is not
// an object carrying a bins array.
var ErrInvalidDocument = errors.New("rule document must be an object with a bins array")

// ParseDocument reads a stored rule document into typed bins. Bins whose
// bounds are not numeric or whose label is not a string are dropped; the
// order of the remaining bins is preserved.
func ParseDocument(raw json.RawMessage) ([]model.Bin, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, ErrInvalidDocument
	}
	rawBins, ok := doc["bins"]
	if !ok {
		return nil, ErrInvalidDocument
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawBins, &entries); err != nil || entries == nil {
		return nil, ErrInvalidDocument
	}

	bins := make([]model.Bin, 0, len(entries))
	for _, entry := range entries {
		if bin, ok := parseBin(entry); ok {
			bins = append(bins, bin)
		}
	}
	return bins, nil
}

func parseBin(raw json.RawMessage) (model.Bin, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.Bin{}, false
	}
	lo, ok := number(fields["min"])
	if !ok {
		return model.Bin{}, false
	}
	hi, ok := number(fields["max"])
	if !ok {
		return model.Bin{}, false
	}
	label, ok := str(fields["age_category"])
	if !ok {
		return model.Bin{}, false
	}

	// A non-string gender leaves the bin ungendered.
	gender, _ := str(fields["gender"])

	return model.Bin{Min: lo, Max: hi, AgeCategory: label, Gender: NormalizeGender(gender)}, true
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func str(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// number accepts a JSON number or a string holding one.
func number(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	s, ok := str(raw)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Match returns the label of the first bin whose inclusive range contains age
// and whose gender, if any, equals gender. Gendered bins never match an empty
// gender.
func Match(bins []model.Bin, age int, gender string) (string, bool) {
	a := float64(age)
	for _, b := range bins {
		if a < b.Min || a > b.Max {
			continue
		}
		if b.Gender != "" && b.Gender != gender {
			continue
		}
		return b.AgeCategory, true
	}
	return "", false
}

// Age returns the number of whole years between birth and now.
func Age(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// NormalizeGender reduces a gender value to its uppercase first letter.
func NormalizeGender(gender string) string {
	g := strings.TrimSpace(gender)
	if g == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(g)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// FoldGender folds a gender letter into a category label. A label already
// starting with M or F is kept. With no label the gender becomes the category.
func FoldGender(category, gender string) string {
	g := NormalizeGender(gender)
	switch {
	case g == "":
		return category
	case category == "":
		return g
	case hasGenderPrefix(category):
		return category
	default:
		return g + category
	}
}

func hasGenderPrefix(category string) bool {
	switch category[0] {
	case 'M', 'm', 'F', 'f':
		return true
	}
	return false
}
