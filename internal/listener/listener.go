// Package listener builds the frontend's TCP listener with SO_REUSEPORT
// set on the underlying socket, so that the supervisor's worker pool
// (spec §5's "multiple worker processes of identical shape share the
// listening socket via OS-level SO_REUSEPORT-style fan-out") can bind
// the same host:port from N independent processes and let the kernel
// load-balance accepted connections across them, instead of one
// process accept()-ing and handing work to the others.
//
// Grounded in caddyserver-caddy/listen_linux.go and listen_unix.go,
// which install an identical net.ListenConfig.Control callback; the
// socket-option call itself is adapted from
// odac-run-odac/server/proxy/socket_linux.go's Control-callback shape,
// but issued through golang.org/x/sys/unix rather than raw syscall
// numbers.
package listener

import (
	"context"
	"net"

	"github.com/laggyluke/bud/internal/netutil"
)

// Listen binds host:port for network "tcp" with SO_REUSEPORT applied
// to the listening socket wherever the platform supports it. On
// platforms without SO_REUSEPORT (anything outside the unix family),
// it silently falls back to a plain listener: a single worker still
// works there, only the multi-worker fan-out is unavailable.
//
// host must be an IPv4 or IPv6 literal: spec §4.A/§4.B's "No DNS" rule
// applies to the listening address just as much as to the back end, so
// Listen validates it with netutil.ParseHostPort before ever calling
// into net.ListenConfig.Listen, which would otherwise resolve a
// hostname via the system resolver.
func Listen(host string, port int) (net.Listener, error) {
	tcpAddr, err := netutil.ParseHostPort(host, port)
	if err != nil {
		return nil, err
	}
	cfg := net.ListenConfig{Control: reusePort}
	ln, err := cfg.Listen(context.Background(), "tcp", tcpAddr.String())
	if err != nil {
		return nil, err
	}
	return ln, nil
}
