package netutil

import "fmt"

// ErrNPNLength is returned by EncodeNPN when a protocol name's length
// falls outside [1,255] — the range a single length-prefix byte can
// represent.
var ErrNPNLength = fmt.Errorf("netutil: npn protocol name length out of range")

// EncodeNPN builds the length-prefixed wire format the TLS library's
// Next Protocol Negotiation advertisement callback expects: each name
// is preceded by one byte holding its length. An empty names list
// yields a nil slice (absent), not an empty, zero-length buffer —
// callers must treat a nil result as "do not advertise NPN at all",
// never as "advertise zero protocols."
func EncodeNPN(names []string) ([]byte, error) {
	if len(names) == 0 {
		return nil, nil
	}
	size := 0
	for _, n := range names {
		if len(n) < 1 || len(n) > 255 {
			return nil, fmt.Errorf("netutil: protocol name %q: %w", n, ErrNPNLength)
		}
		size += 1 + len(n)
	}
	wire := make([]byte, 0, size)
	for _, n := range names {
		wire = append(wire, byte(len(n)))
		wire = append(wire, n...)
	}
	return wire, nil
}

// DecodeNPN is the inverse of EncodeNPN; it exists chiefly so the
// round-trip invariant in spec §8 can be tested directly, and is also
// useful for logging what a remote SNI helper advertised.
func DecodeNPN(wire []byte) ([]string, error) {
	var names []string
	for len(wire) > 0 {
		n := int(wire[0])
		wire = wire[1:]
		if n == 0 || n > len(wire) {
			return nil, fmt.Errorf("netutil: %w: truncated entry", ErrNPNLength)
		}
		names = append(names, string(wire[:n]))
		wire = wire[n:]
	}
	return names, nil
}
