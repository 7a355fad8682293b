package ocspstate

import (
	"crypto/x509"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/laggyluke/bud/internal/netutil"
)

// State is one state of the per-context OCSP entry state machine
// described in spec §4.F.
type State int

const (
	Unknown State = iota
	Fetching
	Valid
	Failed
)

func (s State) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Valid:
		return "valid"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Entry holds the per-context OCSP derivations and state. It is built
// once per Context and derives ocsp_id, ocsp_id_b64, and ocsp_url at
// most once each, memoizing the outcome of that first attempt (a
// failure included, since leaf and issuer never change), guarded by a
// mutex: spec §5
// explicitly allows either the single-threaded-worker "write once, no
// lock" model or a "per-context mutex" model for multi-threaded
// workers, and since this implementation uses one goroutine per
// connection, it takes the latter.
type Entry struct {
	leaf   *x509.Certificate
	issuer *x509.Certificate // nil => stapling disabled for this context

	mu        sync.Mutex
	certID    []byte // DER, memoized
	certIDB64 string
	idChecked bool // true once we've attempted CertID derivation, success or not

	url        string
	urlChecked bool // true once we've attempted AIA extraction, success or not

	state    State
	response []byte
	expiry   time.Time
}

// NewEntry builds the OCSP entry for a context's leaf/issuer pair.
// issuer may be nil (spec invariant 2: issuer absent implies ocsp_id
// absent), in which case every derivation below reports "unavailable."
func NewEntry(leaf, issuer *x509.Certificate) *Entry {
	return &Entry{leaf: leaf, issuer: issuer, state: Unknown}
}

// Staplable reports whether this context has everything needed to
// eventually staple a response (spec invariant 3: ocsp_id present iff
// issuer present and CertID derivation succeeded).
func (e *Entry) Staplable() bool {
	_, ok := e.CertIDBase64()
	return ok
}

// CertIDBase64 returns the memoized base64(DER(ocsp_id)) string — the
// stable key used to deduplicate stapling requests across the fleet —
// computing it on first call. The empty string with ok=false means no
// issuer was available or derivation failed.
func (e *Entry) CertIDBase64() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idChecked {
		return e.certIDB64, e.certID != nil
	}
	e.idChecked = true
	if e.issuer == nil {
		return "", false
	}
	der, err := buildCertID(e.leaf, e.issuer)
	if err != nil {
		return "", false
	}
	e.certID = der
	e.certIDB64 = netutil.Base64Encode(der)
	return e.certIDB64, true
}

// ResponderURL returns the cached OCSP responder URL extracted from
// the leaf's AIA extension, computing it on first call. Policy: the
// first URL found wins; any others are discarded.
func (e *Entry) ResponderURL() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.urlChecked {
		return e.url, e.url != ""
	}
	e.urlChecked = true
	if len(e.leaf.OCSPServer) == 0 {
		return "", false
	}
	e.url = e.leaf.OCSPServer[0]
	return e.url, true
}

// Request builds a fresh, DER-encoded OCSP request duplicating the
// cached ocsp_id, returning (url, requestBytes, error). It requires
// both CertIDBase64 and ResponderURL to be available; callers (the
// stapling collaborator) must treat any error as "no response for this
// handshake," never fatal.
func (e *Entry) Request() (url string, req []byte, err error) {
	if _, ok := e.CertIDBase64(); !ok {
		return "", nil, fmt.Errorf("ocspstate: no ocsp_id available, issuer missing or derivation failed")
	}
	url, ok := e.ResponderURL()
	if !ok {
		return "", nil, fmt.Errorf("ocspstate: no OCSP responder URL in certificate")
	}
	req, err = ocsp.CreateRequest(e.leaf, e.issuer, nil)
	if err != nil {
		return "", nil, fmt.Errorf("ocspstate: encoding OCSP request: %w", err)
	}
	return url, req, nil
}

// BeginFetch transitions Unknown/Failed/expired-Valid -> Fetching and
// reports whether the caller should actually issue a fetch. It enforces
// "exactly one Fetching per context at a time": a concurrent caller
// that loses the race gets ok=false and should simply wait for the
// in-flight fetch's result to land via ResolveValid/ResolveFailed.
func (e *Entry) BeginFetch(now time.Time) (ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Unknown, Failed:
		e.state = Fetching
		return true
	case Valid:
		if !now.Before(e.expiry) {
			e.state = Fetching
			return true
		}
		return false
	default: // Fetching
		return false
	}
}

// ResolveValid transitions Fetching -> Valid, recording the staple and
// its expiry (the OCSP response's NextUpdate).
func (e *Entry) ResolveValid(response []byte, expiry time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Valid
	e.response = response
	e.expiry = expiry
}

// ResolveFailed transitions Fetching -> Failed: this handshake (and any
// others observing the entry before the next refresh) gets no staple.
func (e *Entry) ResolveFailed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Failed
}

// Staple returns the currently valid OCSP response bytes, if any.
func (e *Entry) Staple() ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Valid || !time.Now().Before(e.expiry) {
		return nil, false
	}
	return e.response, true
}

// CurrentState reports the state machine's current state, chiefly for
// metrics and tests.
func (e *Entry) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
