// Package frontend is the narrow seam between the TLS context manager
// and the out-of-scope data plane (accept loop driving, bidirectional
// byte pumping, PROXY-protocol framing, back-end dialing). It names
// two seams a real front end would implement (the Dialer interface and
// the Pump function type); this repository
// supplies a default Dialer (a thin net.Dialer wrapper, grounded in
// caddyserver-caddy/caddyhttp/proxy/reverseproxy.go's use of a plain
// net.Dialer for upstream connections) and stops there; everything a
// Pump would do past the handshake — read/write loops, half-close
// handling, renegotiation throttling — is the external collaborator
// spec §1 calls out.
package frontend

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// Dialer opens a connection to the backend a handshake should be
// proxied to, once the CTM has finished terminating TLS on the
// front-end side. It mirrors net.Dialer's DialContext signature so the
// standard dialer (or a testing fake) can be used directly.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Pump moves bytes between a terminated front-end connection and
// whatever the Dialer returned. Implementing it is explicitly out of
// scope here: this type exists only so callers have a named seam to
// seam in the real data-plane component.
type Pump func(ctx context.Context, front *tls.Conn, back net.Conn) error

// NetDialer adapts net.Dialer to Dialer; it is the default used when
// no other collaborator is wired in.
type NetDialer struct {
	net.Dialer
}

// NewNetDialer returns a NetDialer with the given connect timeout
// (backend.keepalive in spec §4.B governs the connection once
// established; this governs only the initial dial).
func NewNetDialer(timeout time.Duration) *NetDialer {
	return &NetDialer{net.Dialer{Timeout: timeout}}
}
