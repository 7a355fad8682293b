// Package tlscontext implements components D and (the synchronous half
// of) E: building one TLS context per configured server identity from
// a budconfig.Config, and the ContextSet's local SNI selection.
// Grounded in caddytls/handshake.go's configGroup (Caddy v1's
// hostname -> *Config lookup feeding tls.Config.GetConfigForClient) and
// caddytls/config.go's per-hostname tls.Config construction, adapted
// from Caddy's ACME-managed certificates to this spec's static,
// config-driven certificate set.
package tlscontext

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"strings"

	"github.com/laggyluke/bud/internal/certchain"
	"github.com/laggyluke/bud/internal/ocspstate"
)

// Stapler performs the OCSP stapling collaborator's job (component F's
// external half, spec §6's HTTP helper protocol): given a context's
// OCSP entry, attempt to bring it up to date, blocking the calling
// goroutine for at most one fetch. Implementations must themselves
// enforce "exactly one Fetching per context at a time" via
// ocspstate.Entry.BeginFetch; a no-op Stapler (or a nil one) simply
// means stapling is never attempted for that context.
type Stapler interface {
	Fetch(ctx context.Context, serverName string, entry *ocspstate.Entry)
}

// Context is a fully configured TLS server identity: cert, key, chain,
// cipher suite, curve, NPN/ALPN, OCSP derivations, and the underlying
// *tls.Config. Spec §3 calls the first three "mutable-on-construction,
// then read-only"; in this Go realization that's simply true by
// convention — nothing past Build mutates these fields — while the
// OCSP memoization fields inside Entry remain the one part that is
// genuinely written after construction, and Entry guards them itself.
type Context struct {
	// Name is the normalized (lowercased) server name this context was
	// built for, or "" for the default context built from frontend.*.
	Name string

	Chain   *certchain.Chain
	NPNWire []byte // nil means "do not advertise NPN/ALPN"
	OCSP    *ocspstate.Entry

	// Stapler is consulted by TLSConfig's GetCertificate before
	// serving a handshake, whenever OCSP's entry holds no fresh staple.
	// It is nil immediately after Build/BuildTransient and is wired in
	// by the caller afterward (see cmd/bud's startup sequence), since
	// stapling is an external collaborator this package only produces
	// an attachment point for.
	Stapler Stapler

	// TLSConfig is the ready-to-use *tls.Config for this identity; it
	// is what a GetConfigForClient callback returns once this Context
	// has been selected.
	TLSConfig *tls.Config
}

// matches reports whether name (already expected lowercase) equals
// this context's Name, case-insensitively and length-first per spec
// §4.E ("require len == context.server_name_len and a case-insensitive
// byte equality of the first len bytes").
func (c *Context) matches(name string) bool {
	return len(name) == len(c.Name) && strings.EqualFold(name, c.Name)
}

// newCertPool returns a fresh, empty trust store, independent of the
// system one.
func newCertPool() *x509.CertPool { return x509.NewCertPool() }
