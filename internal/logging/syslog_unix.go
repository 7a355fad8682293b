//go:build !windows && !plan9 && !js && !wasip1

package logging

import (
	"log/syslog"

	"go.uber.org/zap/zapcore"
)

// syslogFacilities maps spec §4.B's log.facility string to the
// corresponding syslog.Priority facility bits; unrecognized names fall
// back to LOG_USER, the spec's own default.
var syslogFacilities = map[string]syslog.Priority{
	"kern":     syslog.LOG_KERN,
	"user":     syslog.LOG_USER,
	"mail":     syslog.LOG_MAIL,
	"daemon":   syslog.LOG_DAEMON,
	"auth":     syslog.LOG_AUTH,
	"syslog":   syslog.LOG_SYSLOG,
	"lpr":      syslog.LOG_LPR,
	"news":     syslog.LOG_NEWS,
	"uucp":     syslog.LOG_UUCP,
	"cron":     syslog.LOG_CRON,
	"authpriv": syslog.LOG_AUTHPRIV,
	"ftp":      syslog.LOG_FTP,
	"local0":   syslog.LOG_LOCAL0,
	"local1":   syslog.LOG_LOCAL1,
	"local2":   syslog.LOG_LOCAL2,
	"local3":   syslog.LOG_LOCAL3,
	"local4":   syslog.LOG_LOCAL4,
	"local5":   syslog.LOG_LOCAL5,
	"local6":   syslog.LOG_LOCAL6,
	"local7":   syslog.LOG_LOCAL7,
}

func syslogCore(facility string, level zapcore.LevelEnabler) (zapcore.Core, error) {
	f, ok := syslogFacilities[facility]
	if !ok {
		f = syslog.LOG_USER
	}
	writer, err := syslog.New(f|syslog.LOG_INFO, "bud")
	if err != nil {
		return nil, err
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(writer), level), nil
}
