package scanner

import (
	"strings"
	"time"

	"github.com/ginjaninja78/billreport/internal/types"
)

// DefaultSeparator splits "<date>_<name>.<ext>" file names.
const DefaultSeparator = "_"

// dateLayouts are tried in order against the date token.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01",
	"2006",
	"20060102",
}

// Decode derives a RecordIdentity from a bare file name.
//
// Everything from the first "." onward is dropped, so "2021-01-01_a.b.csv"
// decodes as "2021-01-01_a". The remainder is split on separator: the first
// token is the date, the second the name. Further tokens are discarded.
//
// Decode never fails. A date token that does not parse leaves Date as the
// zero time, and a missing second token leaves Name empty; the scanner
// decides what to do with such identities.
func Decode(fileName, separator string) types.RecordIdentity {
	if separator == "" {
		separator = DefaultSeparator
	}

	stem, _, _ := strings.Cut(fileName, ".")
	tokens := strings.Split(stem, separator)

	identity := types.RecordIdentity{
		FileName: fileName,
		Date:     ParseDate(tokens[0]),
	}
	if len(tokens) > 1 {
		identity.Name = tokens[1]
	}
	return identity
}

// ParseDate parses a date token in UTC, returning the zero time on failure.
func ParseDate(token string) time.Time {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
