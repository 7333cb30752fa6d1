package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/froydnj/contentdir/internal/directory"
	"github.com/froydnj/contentdir/internal/shared"
)

const defaultSubscriptionTimeout = 1800 * time.Second

// subscription is one GENA subscriber: its callback URLs, lease expiry, and
// event sequence counter.
type subscription struct {
	sid       string
	callbacks []string
	expires   time.Time
	seq       uint32
}

// EventHandler implements GENA eventing for the ContentDirectory service:
// SUBSCRIBE/UNSUBSCRIBE bookkeeping on the event route plus NOTIFY delivery.
// It is the broadcaster behind the directory notifier, so rate limiting and
// revision tracking stay in the directory package.
type EventHandler struct {
	mu       sync.Mutex
	logger   *log.Logger
	subs     map[string]*subscription
	notifier *directory.Notifier
	client   *http.Client
}

// NewEventHandler creates the event endpoint. Bind the notifier before
// serving requests.
func NewEventHandler(logger *log.Logger) *EventHandler {
	return &EventHandler{
		logger: logger,
		subs:   map[string]*subscription{},
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Bind attaches the notifier once it exists. The notifier needs the handler
// as its broadcaster, so the two are wired in two steps.
func (h *EventHandler) Bind(n *directory.Notifier) {
	h.notifier = n
}

// Routes returns the HTTP routes this handler serves.
func (h *EventHandler) Routes() []string {
	return []string{"/event"}
}

// ServeHTTP handles SUBSCRIBE and UNSUBSCRIBE requests.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "SUBSCRIBE":
		h.subscribe(w, r)
	case "UNSUBSCRIBE":
		h.unsubscribe(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EventHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("SID")
	callback := r.Header.Get("CALLBACK")

	// renewal: SID without CALLBACK
	if sid != "" {
		if callback != "" {
			http.Error(w, "Incompatible headers", http.StatusBadRequest)
			return
		}
		h.renew(w, r, sid)
		return
	}

	if nt := r.Header.Get("NT"); nt != "upnp:event" {
		h.logger.Warn("rejecting subscribe", "nt", nt, "err", shared.ErrInvalidSubscribe)
		http.Error(w, "Invalid NT header", http.StatusPreconditionFailed)
		return
	}
	callbacks := parseCallbacks(callback)
	if len(callbacks) == 0 {
		h.logger.Warn("rejecting subscribe without callback", "err", shared.ErrInvalidSubscribe)
		http.Error(w, "Missing CALLBACK header", http.StatusPreconditionFailed)
		return
	}

	timeout := parseTimeout(r.Header.Get("TIMEOUT"))
	sub := &subscription{
		sid:       shared.GenerateSID(),
		callbacks: callbacks,
		expires:   time.Now().Add(timeout),
	}

	h.mu.Lock()
	h.subs[sub.sid] = sub
	h.mu.Unlock()

	w.Header().Set("SID", sub.sid)
	w.Header().Set("TIMEOUT", formatTimeout(timeout))
	w.WriteHeader(http.StatusOK)

	h.logger.Info("subscriber added", "sid", sub.sid, "callbacks", len(callbacks))

	// initial sync runs after the subscribe response is on the wire
	go h.notifier.Subscribe(sub.sid)
}

func (h *EventHandler) renew(w http.ResponseWriter, r *http.Request, sid string) {
	timeout := parseTimeout(r.Header.Get("TIMEOUT"))

	h.mu.Lock()
	sub, ok := h.subs[sid]
	if ok {
		sub.expires = time.Now().Add(timeout)
	}
	h.mu.Unlock()

	if !ok {
		http.Error(w, "Unknown subscription", http.StatusPreconditionFailed)
		return
	}
	w.Header().Set("SID", sid)
	w.Header().Set("TIMEOUT", formatTimeout(timeout))
	w.WriteHeader(http.StatusOK)
}

func (h *EventHandler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("SID")

	h.mu.Lock()
	_, ok := h.subs[sid]
	delete(h.subs, sid)
	h.mu.Unlock()

	if !ok {
		http.Error(w, "Unknown subscription", http.StatusPreconditionFailed)
		return
	}
	h.notifier.Unsubscribe(sid)
	h.logger.Info("subscriber removed", "sid", sid)
	w.WriteHeader(http.StatusOK)
}

// NotifyAll delivers the revision to every live subscriber.
func (h *EventHandler) NotifyAll(revision uint32) {
	for _, sub := range h.live() {
		h.deliver(sub, revision)
	}
}

// NotifyOne syncs a single subscriber with the current revision.
func (h *EventHandler) NotifyOne(sid string, revision uint32) {
	h.mu.Lock()
	sub, ok := h.subs[sid]
	h.mu.Unlock()
	if !ok {
		return
	}
	h.deliver(sub, revision)
}

// live returns current subscribers, dropping expired leases as a side effect.
func (h *EventHandler) live() []*subscription {
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	var out []*subscription
	for sid, sub := range h.subs {
		if sub.expires.Before(now) {
			delete(h.subs, sid)
			h.notifier.Unsubscribe(sid)
			h.logger.Debug("subscription expired", "sid", sid)
			continue
		}
		out = append(out, sub)
	}
	return out
}

// deliver sends one NOTIFY to the subscriber's first reachable callback URL.
func (h *EventHandler) deliver(sub *subscription, revision uint32) {
	h.mu.Lock()
	seq := sub.seq
	sub.seq++
	callbacks := sub.callbacks
	h.mu.Unlock()

	body := fmt.Sprintf(`<?xml version="1.0"?>`+
		`<e:propertyset xmlns:e="urn:schemas-upnp-org:event-1-0">`+
		`<e:property><SystemUpdateID>%d</SystemUpdateID></e:property>`+
		`</e:propertyset>`, revision)

	for _, url := range callbacks {
		req, err := http.NewRequest("NOTIFY", url, strings.NewReader(body))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
		req.Header.Set("NT", "upnp:event")
		req.Header.Set("NTS", "upnp:propchange")
		req.Header.Set("SID", sub.sid)
		req.Header.Set("SEQ", strconv.FormatUint(uint64(seq), 10))

		resp, err := h.client.Do(req)
		if err != nil {
			h.logger.Warn("notify delivery failed", "sid", sub.sid, "url", url, "err", err)
			continue
		}
		resp.Body.Close()
		return
	}
}

// parseCallbacks splits a CALLBACK header of the form "<url1><url2>".
func parseCallbacks(header string) []string {
	var urls []string
	for _, part := range strings.Split(header, ">") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "<")
		if strings.HasPrefix(part, "http://") || strings.HasPrefix(part, "https://") {
			urls = append(urls, part)
		}
	}
	return urls
}

// parseTimeout parses a GENA TIMEOUT header ("Second-1800" or
// "Second-infinite"), falling back to the default lease.
func parseTimeout(header string) time.Duration {
	v, ok := strings.CutPrefix(header, "Second-")
	if !ok {
		return defaultSubscriptionTimeout
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return defaultSubscriptionTimeout
	}
	return time.Duration(secs) * time.Second
}

func formatTimeout(d time.Duration) string {
	return "Second-" + strconv.Itoa(int(d/time.Second))
}
