// Package budconfig implements component B of the TLS context manager:
// the config model and its JSON loader, including default application
// and validation. It is grounded in caddy.Config (caddy.go) for the
// shape of a top-level, JSON-native config object, adapted to the much
// narrower schema this spec defines instead of Caddy's module system.
package budconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// LogConfig corresponds to the `log.*` keys of spec §4.B.
type LogConfig struct {
	Level    string `json:"level"`
	Facility string `json:"facility"`
	Stdio    bool   `json:"stdio"`
	Syslog   bool   `json:"syslog"`

	// File enables a rotated on-disk JSON sink. This is additive
	// ambient logging infrastructure (SPEC_FULL.md §4.G); it has no
	// default and is omitted from --default-config when empty.
	File string `json:"file,omitempty"`
}

// FrontendConfig corresponds to the `frontend.*` keys of spec §4.B.
type FrontendConfig struct {
	Port             int     `json:"port"`
	Host             string  `json:"host"`
	Proxyline        bool    `json:"proxyline"`
	Security         string  `json:"security"`
	Ciphers          string  `json:"ciphers,omitempty"`
	ECDH             string  `json:"ecdh"`
	NPN              NPNList `json:"npn,omitempty"`
	Cert             string  `json:"cert"`
	Key              string  `json:"key"`
	Keepalive        int     `json:"keepalive"`
	ServerPreference bool    `json:"server_preference"`
	SSL3             bool    `json:"ssl3"`
	RenegWindow      int     `json:"reneg_window"`
	RenegLimit       int     `json:"reneg_limit"`
}

// BackendConfig corresponds to the `backend.*` keys of spec §4.B.
type BackendConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Keepalive int    `json:"keepalive"`
}

// HelperConfig is shared by `sni.*` and `stapling.*`: an external HTTP
// collaborator reached at host:port with a query template containing
// exactly one %s.
type HelperConfig struct {
	Enabled bool   `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Query   string `json:"query"`
}

// ContextConfig corresponds to one element of the `contexts` array.
type ContextConfig struct {
	ServerName string  `json:"servername"`
	Cert       string  `json:"cert"`
	Key        string  `json:"key"`
	Ciphers    string  `json:"ciphers,omitempty"`
	ECDH       string  `json:"ecdh,omitempty"`
	NPN        NPNList `json:"npn,omitempty"`
}

// Config is the top-level, immutable-after-load configuration object.
type Config struct {
	Workers        int    `json:"workers"`
	RestartTimeout int    `json:"restart_timeout"`
	Log            LogConfig      `json:"log"`
	Frontend       FrontendConfig `json:"frontend"`
	Backend        BackendConfig  `json:"backend"`
	SNI            HelperConfig   `json:"sni"`
	Stapling       HelperConfig   `json:"stapling"`
	Contexts       []ContextConfig `json:"contexts"`

	// path records where this Config was loaded from, for diagnostics
	// only (exposed through Path); it is never serialized.
	path string
}

// Default returns a Config populated with every default from spec §4.B.
func Default() *Config {
	return &Config{
		Workers:        1,
		RestartTimeout: 250,
		Log: LogConfig{
			Level:    "info",
			Facility: "user",
			Stdio:    true,
			Syslog:   false,
		},
		Frontend: FrontendConfig{
			Port:             1443,
			Host:             "0.0.0.0",
			Proxyline:        false,
			Security:         "ssl23",
			ECDH:             "prime256v1",
			Keepalive:        3600,
			Cert:             "keys/cert.pem",
			Key:              "keys/key.pem",
			ServerPreference: true,
			SSL3:             false,
			RenegWindow:      600,
			RenegLimit:       3,
		},
		Backend: BackendConfig{
			Host:      "127.0.0.1",
			Port:      8000,
			Keepalive: 3600,
		},
		SNI: HelperConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9000,
			Query:   "/bud/sni/%s",
		},
		Stapling: HelperConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    9000,
			Query:   "/bud/stapling/%s",
		},
		Contexts: []ContextConfig{},
	}
}

// DefaultJSON renders the default config exactly as `--default-config`
// must print it.
func DefaultJSON() ([]byte, error) {
	return json.MarshalIndent(Default(), "", "  ")
}

// Load reads path, parses it as a JSON object on top of the default
// config (so any key the document omits keeps its default value), and
// validates it per spec §4.B.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(ErrJSONParse, path, err)
	}
	return Parse(data, path)
}

// Parse is Load's testable core: it parses JSON already in memory.
func Parse(data []byte, locus string) (*Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, newError(ErrJSONRootNotObject, locus, nil)
	}

	// Pre-check the contexts array: every element must itself be a
	// JSON object, independent of whether it happens to unmarshal
	// cleanly into ContextConfig (e.g. a bare string would otherwise
	// just fail with an opaque type-mismatch error).
	var probe struct {
		Contexts []json.RawMessage `json:"contexts"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, newError(ErrJSONParse, locus, err)
	}
	for i, raw := range probe.Contexts {
		t := bytes.TrimSpace(raw)
		if len(t) == 0 || t[0] != '{' {
			return nil, newError(ErrJSONCtxNotObject, fmt.Sprintf("%s:contexts[%d]", locus, i), nil)
		}
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		var npnErr *errNPNNonString
		if errors.As(err, &npnErr) {
			return nil, newError(ErrNPNNonString, locus, npnErr)
		}
		return nil, newError(ErrJSONParse, locus, err)
	}
	cfg.path = locus

	return cfg, nil
}

// Path returns the locus Config was loaded from, or "" for a Config
// built programmatically (e.g. via Default).
func (c *Config) Path() string { return c.path }
