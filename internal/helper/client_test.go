package helper

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetRendersQueryAndReturnsBody(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)

	c := NewClient()
	resp, err := c.Get(context.Background(), host, port, "/bud/sni/%s", "example.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body) != "hello" {
		t.Fatalf("got body %q", resp.Body)
	}
	if gotPath != "/bud/sni/example.com" {
		t.Fatalf("got path %q", gotPath)
	}
}

func TestGetEscapesSlashAndPlusInArg(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)

	c := NewClient()
	// a standard-base64 CertID: its alphabet includes '/' and '+',
	// neither of which may survive as a literal path separator.
	certID := "AAAA/BBBB+CCCC="
	if _, err := c.Get(context.Background(), host, port, "/bud/stapling/%s", certID); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if gotPath != "/bud/stapling/"+certID {
		t.Fatalf("got path %q, want the server to decode back to a single %q segment", gotPath, "/bud/stapling/"+certID)
	}
}

func TestGetRejectsBadQueryTemplate(t *testing.T) {
	c := NewClient()
	if _, err := c.Get(context.Background(), "127.0.0.1", 1, "/no-placeholder", "x"); err == nil {
		t.Fatalf("expected an error for a query template without exactly one %%s")
	}
	if _, err := c.Get(context.Background(), "127.0.0.1", 1, "/%s/%s", "x"); err == nil {
		t.Fatalf("expected an error for a query template with two %%s")
	}
}

func TestGetCoalescesConcurrentCallers(t *testing.T) {
	const callers = 10
	var hits int64
	started := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		close(started)
		<-time.After(50 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)

	c := NewClient()
	var arrived sync.WaitGroup
	arrived.Add(callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arrived.Done()
			arrived.Wait()
			if _, err := c.Get(context.Background(), host, port, "/bud/sni/%s", "same.example"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	<-started
	wg.Wait()

	if atomic.LoadInt64(&hits) != 1 {
		t.Fatalf("got %d upstream hits, want 1 (singleflight should coalesce)", hits)
	}
}
