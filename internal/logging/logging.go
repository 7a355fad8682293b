// Package logging builds the process-wide zap.Logger from a
// budconfig.LogConfig (SPEC_FULL.md §4.G, the ambient stack the
// distilled spec leaves to "the logger... out of scope (treated as an
// external collaborator)"). Grounded in
// caddyserver-caddy/logging.go's zap-based setup — stdout/stderr
// writers feeding a zapcore.Core, a syslog sink as a best-effort
// secondary destination — generalized here from Caddy's pluggable
// module system (not a fit for this much narrower surface) down to a
// fixed set of three possible destinations combined with
// zapcore.NewTee: console/JSON stdio, syslog, and a timberjack-rotated
// file.
package logging

import (
	"os"

	"github.com/DeRuina/timberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/laggyluke/bud/internal/budconfig"
)

// New builds a *zap.Logger from cfg, combining every enabled
// destination with zapcore.NewTee. Syslog is best-effort: a
// syslog.New failure (e.g. no local syslog daemon) is logged to
// stderr and otherwise ignored rather than aborting startup, since
// spec names no syslog-specific fatal error kind.
func New(cfg budconfig.LogConfig) (*zap.Logger, error) {
	level, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core

	if cfg.Stdio {
		cores = append(cores, zapcore.NewCore(stdioEncoder(), zapcore.Lock(os.Stderr), level))
	}

	if cfg.Syslog {
		if core, err := syslogCore(cfg.Facility, level); err != nil {
			os.Stderr.WriteString("logging: syslog unavailable, continuing without it: " + err.Error() + "\n")
		} else if core != nil {
			cores = append(cores, core)
		}
	}

	if cfg.File != "" {
		rotator := &timberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     28,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func stdioEncoder() zapcore.Encoder {
	cfg := encoderConfig()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func levelFromString(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return lvl, nil
}
