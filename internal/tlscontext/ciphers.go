package tlscontext

import (
	"crypto/tls"
	"strings"
)

// resolveCipherSuites turns a colon- or comma-separated cipher name
// list into Go cipher suite IDs. Unknown names are skipped rather than
// rejected: spec's Open Questions note that the source never validates
// the cipher string before handing it to the TLS library, and an
// invalid entry becomes "a silent no-op at configuration time" there
// too. An empty string returns nil, meaning "don't touch library
// defaults" (spec §4.D step 5).
func resolveCipherSuites(spec string) []uint16 {
	if spec == "" {
		return nil
	}
	byName := make(map[string]uint16, len(tls.CipherSuites()))
	for _, cs := range tls.CipherSuites() {
		byName[cs.Name] = cs.ID
	}
	var ids []uint16
	for _, name := range strings.FieldsFunc(spec, func(r rune) bool { return r == ':' || r == ',' }) {
		name = strings.TrimSpace(name)
		if id, ok := byName[name]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
