package tlscontext

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"strings"

	"github.com/laggyluke/bud/internal/budconfig"
	"github.com/laggyluke/bud/internal/certchain"
	"github.com/laggyluke/bud/internal/netutil"
	"github.com/laggyluke/bud/internal/ocspstate"
)

// Build constructs the default context from cfg.Frontend and one named
// context per entry in cfg.Contexts, implementing spec §4.D's ten
// construction steps for each. It stops at the first failure: spec's
// Design Notes ask what should happen to already-built contexts when a
// later one fails, and in Go the answer is "nothing needs to happen" —
// there is no explicit free to issue, everything built so far is simply
// unreachable and collected once Build returns its error.
func Build(cfg *budconfig.Config, roots *x509.CertPool) (*ContextSet, error) {
	def, err := buildOne("", cfg.Frontend.Cert, cfg.Frontend.Key, cfg.Frontend.Security,
		cfg.Frontend.Ciphers, cfg.Frontend.ECDH, cfg.Frontend.ServerPreference,
		[]string(cfg.Frontend.NPN), roots)
	if err != nil {
		return nil, err
	}

	set := &ContextSet{Default: def}
	for _, cc := range cfg.Contexts {
		ciphers := cc.Ciphers
		if ciphers == "" {
			ciphers = cfg.Frontend.Ciphers
		}
		ecdh := cc.ECDH
		if ecdh == "" {
			ecdh = cfg.Frontend.ECDH
		}
		npn := []string(cc.NPN)
		if len(npn) == 0 {
			npn = []string(cfg.Frontend.NPN)
		}

		c, err := buildOne(strings.ToLower(cc.ServerName), cc.Cert, cc.Key, cfg.Frontend.Security,
			ciphers, ecdh, cfg.Frontend.ServerPreference, npn, roots)
		if err != nil {
			return nil, err
		}
		set.Named = append(set.Named, c)
	}

	return set, nil
}

// options bundles the per-identity knobs shared by buildOne and
// BuildTransient, so both load paths run the same ten steps.
type options struct {
	serverName   string
	security     string
	ciphers      string
	ecdh         string
	preferServer bool
	npn          []string
	roots        *x509.CertPool
}

func (o options) buildConfig() (*tls.Config, []byte, error) {
	minV, maxV := methodVersions(o.security)

	tlsCfg := &tls.Config{
		MinVersion:               minV,
		MaxVersion:               maxV,
		SessionTicketsDisabled:   true,
		PreferServerCipherSuites: o.preferServer,
	}

	if o.ecdh != "" {
		curve, ok := resolveCurve(o.ecdh)
		if !ok {
			return nil, nil, &Error{Kind: ErrEcdhNotFound, ServerName: o.serverName}
		}
		tlsCfg.CurvePreferences = []tls.CurveID{curve}
	}

	if ids := resolveCipherSuites(o.ciphers); ids != nil {
		tlsCfg.CipherSuites = ids
	}

	wire, err := netutil.EncodeNPN(o.npn)
	if err != nil {
		return nil, nil, &Error{Kind: npnErrorKind(err), ServerName: o.serverName, Err: err}
	}
	if wire != nil {
		names, derr := netutil.DecodeNPN(wire)
		if derr != nil {
			return nil, nil, &Error{Kind: npnErrorKind(derr), ServerName: o.serverName, Err: derr}
		}
		tlsCfg.NextProtos = names
	}

	return tlsCfg, wire, nil
}

// npnErrorKind distinguishes spec's kNpnLength (a configured protocol
// name's length falls outside [1,255]) from kNpnNotSupported (the TLS
// library has no NPN/ALPN support at all). crypto/tls always supports
// ALPN, so in practice every error netutil.EncodeNPN/DecodeNPN can
// return is a length violation; the fallback exists only so the two
// kinds stay distinct if that ever changes.
func npnErrorKind(err error) Kind {
	if errors.Is(err, netutil.ErrNPNLength) {
		return ErrNPNLength
	}
	return ErrNPNNotSupported
}

// certchainErrorKind maps certchain's own Kind taxonomy onto
// tlscontext.Kind one-for-one, so a routine config error (a missing or
// unparsable cert/key file) keeps its real identity instead of
// collapsing into an unrelated category.
func certchainErrorKind(err error) Kind {
	var cerr *certchain.Error
	if errors.As(err, &cerr) {
		switch cerr.Kind {
		case certchain.ErrLoadCert:
			return ErrLoadCert
		case certchain.ErrParseCert:
			return ErrParseCert
		case certchain.ErrParseKey:
			return ErrParseKey
		}
	}
	return ErrLoadCert
}

func finish(serverName string, tlsCfg *tls.Config, wire []byte, chain *certchain.Chain, tlsCert tls.Certificate) *Context {
	entry := ocspstate.NewEntry(chain.Leaf, chain.Issuer)

	ctx := &Context{
		Name:    serverName,
		Chain:   chain,
		NPNWire: wire,
		OCSP:    entry,
	}

	cert := tlsCert
	tlsCfg.GetCertificate = func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
		out := cert
		if ctx.Stapler != nil {
			if _, fresh := entry.Staple(); !fresh {
				ctx.Stapler.Fetch(hello.Context(), ctx.Name, entry)
			}
		}
		if staple, ok := entry.Staple(); ok {
			out.OCSPStaple = staple
		}
		return &out, nil
	}

	ctx.TLSConfig = tlsCfg
	return ctx
}

// buildOne runs spec §4.D's ten steps for a single, file-backed server
// identity:
//  1. resolve the security method to a version range
//  2. create a fresh *tls.Config (the context handle)
//  3. disable the session cache (spec invariant: no cross-connection
//     session resumption state is shared between contexts)
//  4. resolve and set the ECDH curve
//  5. resolve and set the cipher list
//  6. set the server-cipher-preference option (crypto/tls never
//     offers SSLv3, so frontend.ssl3 has no effect here)
//  7. (SNI callback registration happens one level up, in the sni
//     package, once every context in the set exists)
//  8. install the NPN/ALPN wire protocol list
//  9. build the OCSP entry (status callback registration: likewise
//     one level up, see the stapling package)
//  10. load the certificate chain and private key
func buildOne(serverName, certPath, keyPath, security, ciphers, ecdh string,
	preferServer bool, npn []string, roots *x509.CertPool) (*Context, error) {

	o := options{serverName: serverName, security: security, ciphers: ciphers,
		ecdh: ecdh, preferServer: preferServer, npn: npn, roots: roots}
	tlsCfg, wire, err := o.buildConfig()
	if err != nil {
		return nil, err
	}

	chain, tlsCert, err := certchain.Load(certPath, keyPath, roots)
	if err != nil {
		return nil, &Error{Kind: certchainErrorKind(err), ServerName: serverName, Err: err}
	}

	return finish(serverName, tlsCfg, wire, chain, tlsCert), nil
}

// BuildTransient runs the same ten steps as buildOne, but from PEM
// bytes already in memory rather than file paths — the shape the
// asynchronous SNI path's helper response arrives in (spec §4.E: "a
// response containing PEM cert, key, and optional per-name
// parameters"). The resulting Context is owned solely by the TLS
// session that triggered the lookup (spec §5's "transient async-SNI
// contexts... destroyed when the session ends" — in Go, simply
// unreferenced once that session ends).
func BuildTransient(serverName string, certPEM, keyPEM []byte, security, ciphers, ecdh string,
	preferServer bool, npn []string, roots *x509.CertPool) (*Context, error) {

	o := options{serverName: serverName, security: security, ciphers: ciphers,
		ecdh: ecdh, preferServer: preferServer, npn: npn, roots: roots}
	tlsCfg, wire, err := o.buildConfig()
	if err != nil {
		return nil, err
	}

	chain, tlsCert, err := certchain.LoadPEM(certPEM, keyPEM, "helper:"+serverName+":cert", "helper:"+serverName+":key", roots)
	if err != nil {
		return nil, &Error{Kind: certchainErrorKind(err), ServerName: serverName, Err: err}
	}

	return finish(serverName, tlsCfg, wire, chain, tlsCert), nil
}
