// Package stapling implements the external half of component F: an
// ocspstate.Entry consumer that actually talks to the HTTP OCSP helper
// (spec §6's "HTTP helper protocol (consumed, not defined)") and drives
// the entry's state machine. Grounded in
// other_examples/811a6a14_rubenwo-ocspstapling's use of
// golang.org/x/crypto/ocsp for request/response handling, adapted from
// a direct CA connection to this spec's helper-pool indirection.
package stapling

import (
	"context"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/laggyluke/bud/internal/budconfig"
	"github.com/laggyluke/bud/internal/helper"
	"github.com/laggyluke/bud/internal/ocspstate"
)

// ocspStates lists the name of every ocspstate.State: the full label
// set metrics.Registry.SetOCSPState must be told about so it can zero
// every state but the current one.
var ocspStates = []string{
	ocspstate.Unknown.String(),
	ocspstate.Fetching.String(),
	ocspstate.Valid.String(),
	ocspstate.Failed.String(),
}

// Recorder observes fetch outcomes and state transitions for metrics
// (component J).
type Recorder interface {
	RecordOCSP(outcome string)
	SetOCSPState(contextName string, states []string, current string)
}

// Fetcher implements tlscontext.Stapler.
type Fetcher struct {
	Cfg      budconfig.HelperConfig
	Helper   *helper.Client
	Recorder Recorder
}

// Fetch brings entry up to date, blocking the caller for at most one
// helper round trip. It is safe to call from many goroutines
// concurrently for the same entry: ocspstate.Entry.BeginFetch enforces
// "exactly one Fetching per context at a time" (spec §4.F), so a
// caller that loses the race returns immediately without making a
// request, leaving the in-flight fetch to land for everyone.
func (f *Fetcher) Fetch(ctx context.Context, serverName string, entry *ocspstate.Entry) {
	if !f.Cfg.Enabled {
		return
	}
	if !entry.BeginFetch(time.Now()) {
		return
	}
	f.setState(serverName, entry)

	certIDB64, ok := entry.CertIDBase64()
	if !ok {
		entry.ResolveFailed()
		f.record(serverName, entry, "not_staplable")
		return
	}

	// entry.Request also maintains the request-encoding derivation spec
	// §4.F names; component K's helper contract only carries a single
	// %s argument over GET, so what's actually sent upstream is the
	// stable certIDB64 key rather than the raw encoded request bytes.
	if _, _, err := entry.Request(); err != nil {
		entry.ResolveFailed()
		f.record(serverName, entry, "request_error")
		return
	}

	resp, err := f.Helper.Get(ctx, f.Cfg.Host, f.Cfg.Port, f.Cfg.Query, certIDB64)
	if err != nil {
		entry.ResolveFailed()
		f.record(serverName, entry, "helper_error")
		return
	}
	if resp.StatusCode != 200 {
		entry.ResolveFailed()
		f.record(serverName, entry, "helper_status")
		return
	}

	parsed, err := ocsp.ParseResponse(resp.Body, nil)
	if err != nil {
		entry.ResolveFailed()
		f.record(serverName, entry, "parse_error")
		return
	}
	if parsed.Status != ocsp.Good {
		entry.ResolveFailed()
		f.record(serverName, entry, "not_good")
		return
	}

	entry.ResolveValid(resp.Body, parsed.NextUpdate)
	f.record(serverName, entry, "valid")
}

// record updates both of Recorder's surfaces: the fetch-outcome
// counter and the state gauge, reading entry's state back after the
// transition the caller just drove it through.
func (f *Fetcher) record(serverName string, entry *ocspstate.Entry, outcome string) {
	if f.Recorder == nil {
		return
	}
	f.Recorder.RecordOCSP(outcome)
	f.setState(serverName, entry)
}

func (f *Fetcher) setState(serverName string, entry *ocspstate.Entry) {
	if f.Recorder == nil {
		return
	}
	f.Recorder.SetOCSPState(serverName, ocspStates, entry.CurrentState().String())
}
