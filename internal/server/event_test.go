package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/froydnj/contentdir/internal/directory"
	"github.com/froydnj/contentdir/internal/shared"
)

type notifyRecord struct {
	method string
	header http.Header
	body   string
}

// newCallbackServer stands in for a control point's event endpoint.
func newCallbackServer(t *testing.T) (*httptest.Server, chan notifyRecord) {
	t.Helper()
	received := make(chan notifyRecord, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- notifyRecord{method: r.Method, header: r.Header.Clone(), body: string(body)}
	}))
	t.Cleanup(srv.Close)
	return srv, received
}

func newEventHandler(t *testing.T, revision uint32) (*EventHandler, *directory.Notifier) {
	t.Helper()
	logger := shared.NewLogger(io.Discard)
	h := NewEventHandler(logger)
	n := directory.NewNotifier(revision, time.Millisecond, h, logger)
	h.Bind(n)
	t.Cleanup(n.Stop)
	return h, n
}

func doSubscribe(t *testing.T, h *EventHandler, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("SUBSCRIBE", "/event", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func waitNotify(t *testing.T, received chan notifyRecord) notifyRecord {
	t.Helper()
	select {
	case n := <-received:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no NOTIFY delivered")
		return notifyRecord{}
	}
}

func TestSubscribeLifecycle(t *testing.T) {
	h, n := newEventHandler(t, 7)
	cb, received := newCallbackServer(t)

	rec := doSubscribe(t, h, map[string]string{
		"NT":       "upnp:event",
		"CALLBACK": "<" + cb.URL + ">",
		"TIMEOUT":  "Second-300",
	})
	if rec.Code != 200 {
		t.Fatalf("subscribe status = %d", rec.Code)
	}
	sid := rec.Header().Get("SID")
	if !strings.HasPrefix(sid, "uuid:") {
		t.Fatalf("SID = %q", sid)
	}
	if got := rec.Header().Get("TIMEOUT"); got != "Second-300" {
		t.Errorf("TIMEOUT = %q", got)
	}

	// the new subscriber is synced with the current revision right away
	initial := waitNotify(t, received)
	if initial.method != "NOTIFY" {
		t.Errorf("method = %q", initial.method)
	}
	if initial.header.Get("NT") != "upnp:event" || initial.header.Get("NTS") != "upnp:propchange" {
		t.Errorf("NT/NTS = %q/%q", initial.header.Get("NT"), initial.header.Get("NTS"))
	}
	if initial.header.Get("SID") != sid {
		t.Errorf("SID = %q, want %q", initial.header.Get("SID"), sid)
	}
	if initial.header.Get("SEQ") != "0" {
		t.Errorf("SEQ = %q, want 0", initial.header.Get("SEQ"))
	}
	if !strings.Contains(initial.body, "<SystemUpdateID>7</SystemUpdateID>") {
		t.Errorf("body = %s", initial.body)
	}

	// the sequence counter advances per delivery
	h.NotifyAll(9)
	second := waitNotify(t, received)
	if second.header.Get("SEQ") != "1" {
		t.Errorf("SEQ = %q, want 1", second.header.Get("SEQ"))
	}
	if !strings.Contains(second.body, "<SystemUpdateID>9</SystemUpdateID>") {
		t.Errorf("body = %s", second.body)
	}

	t.Run("renewal", func(t *testing.T) {
		rec := doSubscribe(t, h, map[string]string{"SID": sid, "TIMEOUT": "Second-600"})
		if rec.Code != 200 || rec.Header().Get("SID") != sid {
			t.Errorf("renewal status = %d, SID = %q", rec.Code, rec.Header().Get("SID"))
		}
		if got := rec.Header().Get("TIMEOUT"); got != "Second-600" {
			t.Errorf("TIMEOUT = %q", got)
		}
	})

	t.Run("unsubscribe", func(t *testing.T) {
		req := httptest.NewRequest("UNSUBSCRIBE", "/event", nil)
		req.Header.Set("SID", sid)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != 200 {
			t.Fatalf("unsubscribe status = %d", rec.Code)
		}
		if n.SubscriberCount() != 0 {
			t.Errorf("subscribers = %d, want 0", n.SubscriberCount())
		}

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != 412 {
			t.Errorf("repeat unsubscribe status = %d, want 412", rec.Code)
		}
	})
}

func TestSubscribeRejectsBadRequests(t *testing.T) {
	h, _ := newEventHandler(t, 0)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{
			name:    "wrong NT",
			headers: map[string]string{"NT": "upnp:rootdevice", "CALLBACK": "<http://10.0.0.2/>"},
			want:    412,
		},
		{
			name:    "missing callback",
			headers: map[string]string{"NT": "upnp:event"},
			want:    412,
		},
		{
			name:    "renewal with callback",
			headers: map[string]string{"SID": "uuid:abc", "CALLBACK": "<http://10.0.0.2/>"},
			want:    400,
		},
		{
			name:    "renewal of unknown sid",
			headers: map[string]string{"SID": "uuid:missing"},
			want:    412,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doSubscribe(t, h, tt.headers)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestEventRejectsOtherMethods(t *testing.T) {
	h, _ := newEventHandler(t, 0)
	req := httptest.NewRequest("GET", "/event", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestExpiredSubscriptionDropped(t *testing.T) {
	h, n := newEventHandler(t, 3)
	cb, received := newCallbackServer(t)

	rec := doSubscribe(t, h, map[string]string{
		"NT":       "upnp:event",
		"CALLBACK": "<" + cb.URL + ">",
	})
	sid := rec.Header().Get("SID")
	waitNotify(t, received) // initial sync has run, the notifier knows the sid

	h.mu.Lock()
	h.subs[sid].expires = time.Now().Add(-time.Minute)
	h.mu.Unlock()

	h.NotifyAll(4)
	select {
	case got := <-received:
		t.Fatalf("expired subscriber was notified: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
	if n.SubscriberCount() != 0 {
		t.Errorf("subscribers = %d, want 0", n.SubscriberCount())
	}
}

func TestParseCallbacks(t *testing.T) {
	tests := []struct {
		header string
		want   []string
	}{
		{"<http://10.0.0.2:49200/events>", []string{"http://10.0.0.2:49200/events"}},
		{"<http://a/><https://b/>", []string{"http://a/", "https://b/"}},
		{"<ftp://nope/>", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseCallbacks(tt.header)
		if len(got) != len(tt.want) {
			t.Errorf("parseCallbacks(%q) = %v, want %v", tt.header, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("parseCallbacks(%q)[%d] = %q, want %q", tt.header, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"Second-300", 300 * time.Second},
		{"Second-infinite", defaultSubscriptionTimeout},
		{"Second-0", defaultSubscriptionTimeout},
		{"", defaultSubscriptionTimeout},
		{"garbage", defaultSubscriptionTimeout},
	}
	for _, tt := range tests {
		if got := parseTimeout(tt.header); got != tt.want {
			t.Errorf("parseTimeout(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
