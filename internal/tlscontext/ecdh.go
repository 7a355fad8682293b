package tlscontext

import "crypto/tls"

// curveByShortName maps the OID short-names spec §4.D step 4 names to
// Go's tls.CurveID, the stdlib's equivalent of the TLS library's ECDH
// curve registry.
var curveByShortName = map[string]tls.CurveID{
	"prime256v1": tls.CurveP256,
	"secp256r1":  tls.CurveP256,
	"secp384r1":  tls.CurveP384,
	"secp521r1":  tls.CurveP521,
	"x25519":     tls.X25519,
}

func resolveCurve(shortName string) (tls.CurveID, bool) {
	c, ok := curveByShortName[shortName]
	return c, ok
}
