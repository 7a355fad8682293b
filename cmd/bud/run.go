package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/laggyluke/bud/internal/budconfig"
	"github.com/laggyluke/bud/internal/frontend"
	"github.com/laggyluke/bud/internal/helper"
	"github.com/laggyluke/bud/internal/listener"
	"github.com/laggyluke/bud/internal/logging"
	"github.com/laggyluke/bud/internal/metrics"
	"github.com/laggyluke/bud/internal/netutil"
	"github.com/laggyluke/bud/internal/sni"
	"github.com/laggyluke/bud/internal/stapling"
	"github.com/laggyluke/bud/internal/tlscontext"
)

// backendDialTimeout bounds how long connecting to the backend may
// take once a front-end handshake has completed; spec's backend.keepalive
// governs the connection afterward, not the initial dial.
const backendDialTimeout = 5 * time.Second

// run loads cfgPath, builds every collaborator the CTM needs, and
// serves the front-end listener until the process is killed. Actually
// pumping bytes past the handshake is frontend's seam, not this
// function's job: each accepted connection is handshaken and closed on
// its own goroutine (see handleConn) while run moves on to Accept the
// next one.
func run(cfgPath string, isWorker bool) error {
	cfg, err := budconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("bud: loading config: %w", err)
	}

	// spec §4.A/§4.B: neither the front-end nor the back-end host is
	// ever resolved via DNS; a hostname in either is a fatal
	// configuration error, not something to pass to the resolver.
	if _, err := netutil.ParseHostPort(cfg.Frontend.Host, cfg.Frontend.Port); err != nil {
		return &tlscontext.Error{Kind: tlscontext.ErrPton, Err: err}
	}
	if _, err := netutil.ParseHostPort(cfg.Backend.Host, cfg.Backend.Port); err != nil {
		return &tlscontext.Error{Kind: tlscontext.ErrPton, Err: err}
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("bud: building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	reg := metrics.New(prometheus.DefaultRegisterer)

	var roots *x509.CertPool // nil: each collaborator falls back to x509.SystemCertPool itself

	set, err := tlscontext.Build(cfg, roots)
	if err != nil {
		return fmt.Errorf("bud: building TLS contexts: %w", err)
	}

	helperClient := helper.NewClient()

	stapler := &stapling.Fetcher{Cfg: cfg.Stapling, Helper: helperClient, Recorder: reg}
	set.Default.Stapler = stapler
	for _, c := range set.Named {
		c.Stapler = stapler
	}

	resolver := &sni.Resolver{Set: set, Cfg: cfg, Helper: helperClient, Roots: roots, Recorder: reg}
	if len(set.Named) > 0 || cfg.SNI.Enabled {
		set.Default.TLSConfig.GetConfigForClient = resolver.GetConfigForClient
	}

	ln, err := listener.Listen(cfg.Frontend.Host, cfg.Frontend.Port)
	if err != nil {
		return fmt.Errorf("bud: binding frontend listener: %w", err)
	}
	defer ln.Close()

	dialer := frontend.NewNetDialer(backendDialTimeout)

	logger.Info("listening",
		zap.String("address", ln.Addr().String()),
		zap.Bool("worker", isWorker),
		zap.Bool("daemonize", daemonize),
	)

	return serve(context.Background(), ln, set.Default.TLSConfig, dialer, logger)
}

func serve(ctx context.Context, ln net.Listener, tlsCfg *tls.Config, dialer frontend.Dialer, logger *zap.Logger) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go handleConn(ctx, conn, tlsCfg, dialer, logger)
	}
}

// handleConn terminates TLS on conn and then stops: handing the
// resulting *tls.Conn to a frontend.Pump is the out-of-scope data
// plane's job, so this just demonstrates the handoff point and closes
// the connection once the handshake completes.
func handleConn(ctx context.Context, conn net.Conn, tlsCfg *tls.Config, dialer frontend.Dialer, logger *zap.Logger) {
	tlsConn := tls.Server(conn, tlsCfg)
	defer tlsConn.Close()

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		logger.Debug("handshake failed", zap.Error(err), zap.String("remote", conn.RemoteAddr().String()))
		return
	}
	logger.Debug("handshake complete",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.String("servername", tlsConn.ConnectionState().ServerName),
	)
	_ = dialer // wired in for the data plane's future use; this seam doesn't dial itself
}
