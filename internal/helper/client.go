// Package helper implements component K: the single HTTP collaborator
// contract shared by SNI lookup (component E's remote path) and OCSP
// stapling (component F), matching spec §4.B's sni.* / stapling.*
// schema (host, port, a query template with exactly one %s). Grounded
// in golang.org/x/sync/singleflight's documented request-coalescing
// pattern (adopted wholesale: concurrent callers asking for the same
// URL share one round trip) and in net/http's default client, the
// standard library's stand-in for the TLS-library-external HTTP client
// the spec's source links against.
package helper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single request when the caller doesn't
// provide its own context deadline, matching spec §4.B's guidance that
// a hung external collaborator must not stall a handshake indefinitely.
const DefaultTimeout = 2 * time.Second

// Response is the helper collaborator's answer: its HTTP status and
// body, already fully read. Callers interpret the body (a JSON payload
// of PEM cert/key material for SNI, a DER OCSP response for stapling).
type Response struct {
	StatusCode int
	Body       []byte
}

// Client queries an external HTTP collaborator at host:port, rendering
// query (which must contain exactly one %s) with a single, URL-escaped
// argument. Concurrent calls for the same (host, port, query, arg)
// tuple are coalesced into one in-flight request via singleflight,
// mirroring the spec's "at most one lookup in flight per key" guidance
// for both the SNI and stapling collaborators.
type Client struct {
	HTTPClient *http.Client
	group      singleflight.Group
}

// NewClient returns a Client using http.DefaultClient's transport with
// no client-wide timeout; per-call timeouts are enforced via context in
// Get instead, so one slow lookup can't be starved by another caller's
// shorter deadline.
func NewClient() *Client {
	return &Client{HTTPClient: &http.Client{}}
}

// Get issues (or joins an in-flight) GET to fmt.Sprintf(queryFmt,
// url.QueryEscape(arg)) against host:port: arg is escaped before
// substitution so a value containing a path-significant byte (a
// base64 CertID's "/" or "+") renders as one opaque path segment
// rather than being reinterpreted by the URL parser. If ctx carries no
// deadline, DefaultTimeout is applied.
func (c *Client) Get(ctx context.Context, host string, port int, queryFmt, arg string) (*Response, error) {
	if strings.Count(queryFmt, "%s") != 1 {
		return nil, fmt.Errorf("helper: query template %q must contain exactly one %%s", queryFmt)
	}
	path := fmt.Sprintf(queryFmt, url.QueryEscape(arg))
	key := fmt.Sprintf("%s:%d%s", host, port, path)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.do(ctx, host, port, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Response), nil
}

func (c *Client) do(ctx context.Context, host string, port int, path string) (*Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	// path already carries its escaped arg (see Get); parsing the fully
	// assembled URL string, rather than assigning path to a url.URL's
	// Path field, lets url.Parse recognize it as already-encoded and
	// preserve it verbatim in RawPath. Building it via url.URL{Path:
	// path}.String() instead would re-escape it, turning a CertID's
	// already-escaped "%2F" into "%252F" on the wire.
	rawURL := fmt.Sprintf("http://%s:%d%s", host, port, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("helper: building request: %w", err)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("helper: requesting %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("helper: reading response body from %s: %w", rawURL, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
