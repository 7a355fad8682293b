package tlscontext

import "fmt"

// Kind enumerates the fatal, startup-time error categories of spec §7
// that belong to context construction. kPton is wired to a real Go
// failure mode: netutil.ParseHostPort's "no DNS" rule rejects a
// front-end or back-end host that isn't an IP literal (see cmd/bud's
// startup validation and internal/listener). kLoadCert/kParseCert/
// kParseKey mirror certchain.Kind one-for-one so a config error in the
// certificate chain keeps its own identity instead of collapsing into
// an unrelated category. kNpnNotSupported, kSniNotSupported, kExePath,
// and kNoMem still have no Go equivalent failure mode — crypto/tls
// always supports SNI and ALPN, and the standard library doesn't
// expose "own executable path unresolvable" or "no start line" style
// global error state — so those four are kept only as named,
// documented constants for taxonomy parity; see DESIGN.md.
type Kind int

const (
	_ Kind = iota
	ErrEcdhNotFound
	ErrSSL3Unsupported
	ErrNPNNotSupported
	ErrNPNLength
	ErrSNINotSupported
	ErrPton
	ErrExePath
	ErrNoMem
	ErrLoadCert
	ErrParseCert
	ErrParseKey
)

func (k Kind) String() string {
	switch k {
	case ErrEcdhNotFound:
		return "kEcdhNotFound"
	case ErrSSL3Unsupported:
		return "kSSL3Unsupported"
	case ErrNPNNotSupported:
		return "kNpnNotSupported"
	case ErrNPNLength:
		return "kNpnLength"
	case ErrSNINotSupported:
		return "kSniNotSupported"
	case ErrPton:
		return "kPton"
	case ErrExePath:
		return "kExePath"
	case ErrNoMem:
		return "kNoMem"
	case ErrLoadCert:
		return "kLoadCert"
	case ErrParseCert:
		return "kParseCert"
	case ErrParseKey:
		return "kParseKey"
	default:
		return "kUnknown"
	}
}

// Error is a fatal context-construction error, naming which configured
// context (by server name, or "" for the default) failed and why.
type Error struct {
	Kind       Kind
	ServerName string
	Err        error
}

func (e *Error) Error() string {
	name := e.ServerName
	if name == "" {
		name = "(default)"
	}
	if e.Err != nil {
		return fmt.Sprintf("tlscontext: %s building context %q: %v", e.Kind, name, e.Err)
	}
	return fmt.Sprintf("tlscontext: %s building context %q", e.Kind, name)
}

func (e *Error) Unwrap() error { return e.Err }
