package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/postboard-api/internal/config"
	"github.com/iliyamo/postboard-api/internal/model"
	"github.com/iliyamo/postboard-api/internal/service"
	"github.com/iliyamo/postboard-api/internal/utils"
)

type stubVerifier struct {
	tokens map[string]utils.Payload
	err    error
}

func (s stubVerifier) Verify(_ context.Context, raw, kind string) (utils.Payload, error) {
	if s.err != nil {
		return utils.Payload{}, s.err
	}
	p, ok := s.tokens[kind+":"+raw]
	if !ok {
		return utils.Payload{}, &service.Error{Kind: service.KindUnauthorized, Message: "Token revoked"}
	}
	return p, nil
}

func run(t *testing.T, mw []echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, utils.Payload) {
	t.Helper()
	e := echo.New()
	var seen utils.Payload
	e.GET("/protected", func(c echo.Context) error {
		seen, _ = Identity(c)
		return c.NoContent(http.StatusOK)
	}, mw...)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestJWTAuth(t *testing.T) {
	user := utils.Payload{UserID: 5, Email: "u@x.io", Role: "USER"}
	v := stubVerifier{tokens: map[string]utils.Payload{"access:good": user}}

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"no header", "", http.StatusUnauthorized, "Unauthorized"},
		{"basic scheme", "Basic abc", http.StatusUnauthorized, "Unauthorized"},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized, "Unauthorized"},
		{"revoked", "Bearer stale", http.StatusUnauthorized, "Token revoked"},
		{"valid", "Bearer good", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen := run(t, []echo.MiddlewareFunc{JWTAuth(v, utils.KindAccess)}, tt.header)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK {
				if seen != user {
					t.Fatalf("identity = %+v", seen)
				}
				return
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body: %v", err)
			}
			if body["message"] != tt.message || body["statusCode"] != float64(tt.status) {
				t.Fatalf("body = %v", body)
			}
		})
	}
}

func TestJWTAuthStoreFailure(t *testing.T) {
	v := stubVerifier{err: errors.New("db down")}
	rec, _ := run(t, []echo.MiddlewareFunc{JWTAuth(v, utils.KindAccess)}, "Bearer x")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	v := stubVerifier{tokens: map[string]utils.Payload{
		"access:user":  {UserID: 1, Role: "USER"},
		"access:admin": {UserID: 2, Role: "ADMIN"},
	}}
	chain := []echo.MiddlewareFunc{JWTAuth(v, utils.KindAccess), RequireRole(model.RoleAdmin)}

	if rec, _ := run(t, chain, "Bearer user"); rec.Code != http.StatusForbidden {
		t.Fatalf("user status = %d, want 403", rec.Code)
	}
	if rec, _ := run(t, chain, "Bearer admin"); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
	if rec, _ := run(t, []echo.MiddlewareFunc{RequireRole(model.RoleAdmin)}, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous status = %d, want 403", rec.Code)
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/auth/login")

	tests := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.9"},
		{"ip_route", "rl:ip:10.0.0.9:route:POST /auth/login"},
		{"user", "rl:user:anon"},
		{"", "rl:ip:10.0.0.9:user:anon:route:POST /auth/login"},
		{"bogus", "rl:ip:10.0.0.9:user:anon:route:POST /auth/login"},
		{"route_ip", "rl:route:POST /auth/login:ip:10.0.0.9"},
	}
	for _, tt := range tests {
		got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}, c)
		if got != tt.want {
			t.Fatalf("rateKey(%q) = %q, want %q", tt.strategy, got, tt.want)
		}
	}

	setIdentity(c, utils.Payload{UserID: 42})
	if got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c); got != "rl:user:42" {
		t.Fatalf("rateKey(user) = %q", got)
	}
}

func TestDisabledRedisMiddlewaresPassThrough(t *testing.T) {
	chain := []echo.MiddlewareFunc{
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil),
		NewRedisCache(config.CacheConfig{Enabled: true}, nil),
	}
	if rec, _ := run(t, chain, ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCachedResponseReplay(t *testing.T) {
	entry := cachedResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": {"application/json"}, "Content-Length": {"999"}},
		Body:   []byte(`{"ok":true}`),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var hit cachedResponse
	if err := json.Unmarshal(raw, &hit); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/posts", nil), rec)
	if err := hit.replay(c); err != nil {
		t.Fatalf("replay() error = %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != `{"ok":true}` {
		t.Fatalf("replayed %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Cache") != "HIT" || rec.Header().Get("Content-Length") == "999" {
		t.Fatalf("headers = %v", rec.Header())
	}
}

func TestRecorderTruncation(t *testing.T) {
	r := &recorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	_, _ = r.Write([]byte("abc"))
	if r.truncated() {
		t.Fatal("truncated below the limit")
	}
	_, _ = r.Write([]byte("de"))
	if !r.truncated() || r.body.String() != "abc" {
		t.Fatalf("truncated = %v, body = %q", r.truncated(), r.body.String())
	}
}

func TestCacheKeyIncludesParams(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	key := func(id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/posts/"+id, nil), httptest.NewRecorder())
		c.SetPath("/posts/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKey(cfg, c)
	}
	if key("1") == key("2") {
		t.Fatal("different ids share a cache key")
	}
	if key("1") != key("1") {
		t.Fatal("cache key not stable")
	}
}
