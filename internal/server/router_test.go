package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubHandler struct {
	routes []string
	hits   int
}

func (s *stubHandler) Routes() []string { return s.routes }

func (s *stubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.hits++
	w.WriteHeader(http.StatusNoContent)
}

func TestRouterMethodMatching(t *testing.T) {
	router := NewBasicRouter()
	router.Handle("SUBSCRIBE", "/event", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		method string
		want   int
	}{
		{"SUBSCRIBE", 200},
		{"subscribe", 200}, // method match is case-insensitive for GENA verbs
		{"GET", 405},
		{"POST", 405},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/event", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s /event = %d, want %d", tt.method, rec.Code, tt.want)
		}
	}
}

func TestRouterRegistersAllHandlerRoutes(t *testing.T) {
	router := NewBasicRouter()
	h := &stubHandler{routes: []string{"/device.xml", "/scpd/ContentDirectory.xml"}}
	router.Handler(h)

	for _, route := range h.routes {
		req := httptest.NewRequest("GET", route, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("GET %s = %d, want 204", route, rec.Code)
		}
	}
	if h.hits != 2 {
		t.Errorf("hits = %d, want 2", h.hits)
	}
}

func TestRouterMiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(tag("outer"), tag("inner"))
	router.Handle("GET", "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))

	want := []string{"outer", "inner", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
