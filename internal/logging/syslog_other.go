//go:build windows || plan9 || js || wasip1

package logging

import (
	"errors"

	"go.uber.org/zap/zapcore"
)

// syslogCore reports an error on platforms without log/syslog; New
// treats that as "best-effort, keep going without it", same as any
// other syslog dial failure.
func syslogCore(facility string, level zapcore.LevelEnabler) (zapcore.Core, error) {
	return nil, errors.New("syslog is not supported on this platform")
}
