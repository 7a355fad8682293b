// Package sni implements component E: resolving the TLS context for an
// incoming handshake by server name, locally first and, when
// configured, via an asynchronous lookup against an external HTTP
// helper. Grounded in other_examples' patdowney-tcpproxy sni.go, which
// shows the idiomatic Go shape of "match on SNI, else call a
// TargetLookup function" — adapted here from routing decisions to
// building a transient tls.Config — and in crypto/tls's own
// GetConfigForClient contract, which plays the role spec §4.E assigns
// to the TLS library's SNI servername callback.
//
// Go's handshake model removes the need for the spec's two-phase
// "suspend, attach result to session, resume" dance: crypto/tls invokes
// GetConfigForClient synchronously on its own per-connection goroutine,
// so GetConfigForClient can simply block on the helper round trip and return the
// final *tls.Config directly. The net effect — exactly one SNI decision
// per session, observed once — is the same; see DESIGN.md.
package sni

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/laggyluke/bud/internal/budconfig"
	"github.com/laggyluke/bud/internal/helper"
	"github.com/laggyluke/bud/internal/tlscontext"
)

// Recorder observes resolution outcomes for metrics (component J); a
// nil Recorder is valid and simply means "don't record."
type Recorder interface {
	RecordSNI(result string)
}

// helperPayload is the JSON shape the SNI helper's response body is
// decoded as: PEM certificate and key material for the requested name,
// plus the same optional per-context overrides a config-file context
// entry can carry.
type helperPayload struct {
	Cert    string   `json:"cert"`
	Key     string   `json:"key"`
	Ciphers string   `json:"ciphers,omitempty"`
	ECDH    string   `json:"ecdh,omitempty"`
	NPN     []string `json:"npn,omitempty"`
}

// Resolver wires a built ContextSet to a *tls.Config's
// GetConfigForClient, adding the asynchronous remote lookup path.
type Resolver struct {
	Set      *tlscontext.ContextSet
	Cfg      *budconfig.Config
	Helper   *helper.Client
	Roots    *x509.CertPool
	Recorder Recorder
}

// GetConfigForClient is installed as the base tls.Config's
// GetConfigForClient callback whenever the ContextSet has at least one
// named entry or remote SNI is enabled (spec §4.D step 7).
func (r *Resolver) GetConfigForClient(hello *tls.ClientHelloInfo) (*tls.Config, error) {
	name := strings.ToLower(hello.ServerName)

	if name == "" {
		r.record("no_sni")
		return nil, nil
	}

	if ctx, ok := r.Set.SelectNamed(name); ok {
		r.record("local_hit")
		return ctx.TLSConfig, nil
	}

	if r.Cfg.SNI.Enabled {
		reqCtx := hello.Context()
		if reqCtx == nil {
			reqCtx = context.Background()
		}
		if ctx, err := r.resolveRemote(reqCtx, name); err == nil {
			r.record("remote_hit")
			return ctx.TLSConfig, nil
		}
		r.record("remote_miss")
	} else {
		r.record("local_miss")
	}

	return r.Set.Default.TLSConfig, nil
}

func (r *Resolver) record(result string) {
	if r.Recorder != nil {
		r.Recorder.RecordSNI(result)
	}
}

// resolveRemote performs the asynchronous path of spec §4.E: it GETs
// the configured SNI helper, expects a JSON payload carrying PEM cert
// and key material (and optional per-name overrides), and materializes
// it into a transient Context via tlscontext.BuildTransient.
func (r *Resolver) resolveRemote(ctx context.Context, name string) (*tlscontext.Context, error) {
	cfg := r.Cfg.SNI
	resp, err := r.Helper.Get(ctx, cfg.Host, cfg.Port, cfg.Query, name)
	if err != nil {
		return nil, fmt.Errorf("sni: helper request for %q: %w", name, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("sni: helper returned status %d for %q", resp.StatusCode, name)
	}

	var payload helperPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("sni: decoding helper response for %q: %w", name, err)
	}
	if payload.Cert == "" || payload.Key == "" {
		return nil, fmt.Errorf("sni: helper response for %q missing cert or key", name)
	}

	ciphers := payload.Ciphers
	if ciphers == "" {
		ciphers = r.Cfg.Frontend.Ciphers
	}
	ecdh := payload.ECDH
	if ecdh == "" {
		ecdh = r.Cfg.Frontend.ECDH
	}
	npn := payload.NPN
	if len(npn) == 0 {
		npn = []string(r.Cfg.Frontend.NPN)
	}

	return tlscontext.BuildTransient(name, []byte(payload.Cert), []byte(payload.Key),
		r.Cfg.Frontend.Security, ciphers, ecdh, r.Cfg.Frontend.ServerPreference, npn, r.Roots)
}
