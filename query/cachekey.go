package query

import (
	"encoding/json"
	"hash/fnv"
	"strconv"
	"strings"
)

// GenerateCacheKey derives the cache key for a GraphQL request (spec §4.6,
// §6 "Cache key format"): "gql:" + (operationName|hash(query)) +
// (":" + hash(stableStringify(variables)))?
func GenerateCacheKey(operationName, query string, variables map[string]any) string {
	var b strings.Builder
	b.WriteString("gql:")

	if operationName != "" {
		b.WriteString(operationName)
	} else {
		b.WriteString(hashString(normalizeQuery(query)))
	}

	if len(variables) > 0 {
		b.WriteString(":")
		b.WriteString(hashString(stableStringify(variables)))
	}

	return b.String()
}

// normalizeQuery trims the query and collapses every run of whitespace to a
// single space, so cosmetic query-text differences (newlines, indentation)
// don't change the cache key when no operationName is given.
func normalizeQuery(query string) string {
	fields := strings.Fields(query)
	return strings.Join(fields, " ")
}

// stableStringify canonicalizes v to JSON. encoding/json already sorts
// map[string]any keys when marshaling, which is exactly the "recursively
// sorted object keys" canonical form spec §4.6 asks for (§8 round-trip
// law: stableStringify({a:1,b:2}) === stableStringify({b:2,a:1})).
func stableStringify(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(out)
}

// hashString is the deterministic 32-bit string hash the spec calls for
// (§4.6 "hash is a deterministic 32-bit string hash encoded in base-36"),
// FNV-1a being the standard stdlib choice for non-cryptographic string
// hashing — see DESIGN.md for why no keyed/crypto hash library is wired.
func hashString(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 36)
}
