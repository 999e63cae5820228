// Package headers parses repeated -H "Key: Value" flags.
package headers

import (
	"net/textproto"
	"strings"
)

// ParseHeaders converts header strings ("Key: Value") into a map keyed by the
// canonical header name. Entries without a colon or with an empty name are
// skipped; a later entry replaces an earlier one with the same name.
func ParseHeaders(h []string) map[string]string {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		name, value, ok := strings.Cut(hdr, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m[textproto.CanonicalMIMEHeaderKey(name)] = strings.TrimSpace(value)
	}
	return m
}
