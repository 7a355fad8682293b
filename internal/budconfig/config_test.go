package budconfig

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDefaultConfigMatchesTable(t *testing.T) {
	cfg := Default()
	cases := []struct {
		name string
		got  any
		want any
	}{
		{"workers", cfg.Workers, 1},
		{"restart_timeout", cfg.RestartTimeout, 250},
		{"log.level", cfg.Log.Level, "info"},
		{"log.facility", cfg.Log.Facility, "user"},
		{"log.stdio", cfg.Log.Stdio, true},
		{"log.syslog", cfg.Log.Syslog, false},
		{"frontend.port", cfg.Frontend.Port, 1443},
		{"frontend.host", cfg.Frontend.Host, "0.0.0.0"},
		{"frontend.proxyline", cfg.Frontend.Proxyline, false},
		{"frontend.security", cfg.Frontend.Security, "ssl23"},
		{"frontend.ecdh", cfg.Frontend.ECDH, "prime256v1"},
		{"frontend.keepalive", cfg.Frontend.Keepalive, 3600},
		{"frontend.server_preference", cfg.Frontend.ServerPreference, true},
		{"frontend.ssl3", cfg.Frontend.SSL3, false},
		{"frontend.cert", cfg.Frontend.Cert, "keys/cert.pem"},
		{"frontend.key", cfg.Frontend.Key, "keys/key.pem"},
		{"frontend.reneg_window", cfg.Frontend.RenegWindow, 600},
		{"frontend.reneg_limit", cfg.Frontend.RenegLimit, 3},
		{"backend.port", cfg.Backend.Port, 8000},
		{"backend.host", cfg.Backend.Host, "127.0.0.1"},
		{"backend.keepalive", cfg.Backend.Keepalive, 3600},
		{"sni.enabled", cfg.SNI.Enabled, false},
		{"sni.port", cfg.SNI.Port, 9000},
		{"sni.host", cfg.SNI.Host, "127.0.0.1"},
		{"sni.query", cfg.SNI.Query, "/bud/sni/%s"},
		{"stapling.enabled", cfg.Stapling.Enabled, false},
		{"stapling.port", cfg.Stapling.Port, 9000},
		{"stapling.host", cfg.Stapling.Host, "127.0.0.1"},
		{"stapling.query", cfg.Stapling.Query, "/bud/stapling/%s"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(cfg.Contexts) != 0 {
		t.Errorf("Contexts = %v, want empty", cfg.Contexts)
	}
}

func TestDefaultJSONHasEmptyContextsArray(t *testing.T) {
	data, err := DefaultJSON()
	if err != nil {
		t.Fatalf("DefaultJSON: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(m["contexts"]) != "[]" {
		t.Errorf("contexts = %s, want []", m["contexts"])
	}
}

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Parse([]byte(`{"frontend":{"port":8443}}`), "test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Frontend.Port != 8443 {
		t.Errorf("Frontend.Port = %d, want 8443", cfg.Frontend.Port)
	}
	if cfg.Frontend.Host != "0.0.0.0" {
		t.Errorf("Frontend.Host = %q, want default 0.0.0.0 to survive partial override", cfg.Frontend.Host)
	}
	if cfg.Backend.Port != 8000 {
		t.Errorf("Backend.Port = %d, want default 8000", cfg.Backend.Port)
	}
}

func TestParseRootNotObject(t *testing.T) {
	_, err := Parse([]byte(`[1,2,3]`), "test")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrJSONRootNotObject {
		t.Fatalf("Parse([1,2,3]) = %v, want ErrJSONRootNotObject", err)
	}
}

func TestParseContextNotObject(t *testing.T) {
	_, err := Parse([]byte(`{"contexts":["oops"]}`), "test")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrJSONCtxNotObject {
		t.Fatalf("Parse with non-object context = %v, want ErrJSONCtxNotObject", err)
	}
}

func TestParseNPNNonString(t *testing.T) {
	_, err := Parse([]byte(`{"frontend":{"npn":["http/1.1", 2]}}`), "test")
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrNPNNonString {
		t.Fatalf("Parse with non-string npn = %v, want ErrNPNNonString", err)
	}
}

func TestParseEmptyContextsArray(t *testing.T) {
	cfg, err := Parse([]byte(`{"contexts":[]}`), "test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Contexts) != 0 {
		t.Errorf("Contexts = %v, want empty", cfg.Contexts)
	}
}

func TestParseContextFields(t *testing.T) {
	cfg, err := Parse([]byte(`{"contexts":[
		{"servername":"a.test","cert":"a.pem","key":"a.key"},
		{"servername":"b.test","cert":"b.pem","key":"b.key","npn":["h2"]}
	]}`), "test")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Contexts) != 2 {
		t.Fatalf("len(Contexts) = %d, want 2", len(cfg.Contexts))
	}
	if cfg.Contexts[1].NPN[0] != "h2" {
		t.Errorf("Contexts[1].NPN = %v, want [h2]", cfg.Contexts[1].NPN)
	}
}
