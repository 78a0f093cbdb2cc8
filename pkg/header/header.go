// Package header turns caller-supplied name/value text pairs into a validated
// http.Header ready to be attached to an outgoing request.
package header

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/glorpus-work/reqfile/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

// Pair is a single header entry as supplied by a caller.
type Pair struct {
	Name  string
	Value string
}

var (
	errInvalidName  = fmt.Errorf("not a valid HTTP field-name token")
	errInvalidValue = fmt.Errorf("contains bytes not allowed in an HTTP field-value")
	errMissingColon = fmt.Errorf("expected \"Name: value\"")
)

// FromPairs validates pairs in order and builds a header collection. Names are
// canonicalized, so pairs differing only in case collapse into one entry and the
// last value wins. The first invalid name or value aborts the translation.
func FromPairs(pairs []Pair) (http.Header, error) {
	h := make(http.Header, len(pairs))
	for _, p := range pairs {
		if !httpguts.ValidHeaderFieldName(p.Name) {
			return nil, errors.InvalidHeaderName(p.Name, errInvalidName)
		}
		if !httpguts.ValidHeaderFieldValue(p.Value) {
			return nil, errors.InvalidHeaderValue(p.Name, errInvalidValue)
		}
		h.Set(p.Name, p.Value)
	}
	return h, nil
}

// FromMap is FromPairs for an unordered mapping. Keys are visited in sorted order
// so the reported failure and the winner among case-variant duplicates do not
// depend on map iteration order.
func FromMap(m map[string]string) (http.Header, error) {
	return FromPairs(SortedPairs(m))
}

// SortedPairs returns the entries of m ordered by key.
func SortedPairs(m map[string]string) []Pair {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Name: k, Value: m[k]})
	}
	return pairs
}

// ParsePair splits a curl-style "Name: value" argument. Surrounding whitespace of
// the value is trimmed; the name is taken verbatim so that an invalid name is
// still reported by FromPairs.
func ParsePair(s string) (Pair, error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok {
		return Pair{}, errors.InvalidHeaderName(s, errMissingColon)
	}
	return Pair{Name: name, Value: strings.TrimSpace(value)}, nil
}
