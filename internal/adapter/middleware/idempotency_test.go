package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"flendly-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const testKey = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

// asCaller stands in for Auth so the key is scoped to a known user.
func asCaller(id string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := id
			if h := c.Request().Header.Get("X-Test-User"); h != "" {
				uid = h
			}
			WithCaller(c, user.Caller{UserID: uid, Role: user.RoleApplicant})
			return next(c)
		}
	}
}

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(asCaller("user-1"), Idempotency(rdb, ttl, logrus.New()))
	e.POST("/loans", handler)
	e.GET("/loans", handler) // for non-mutating bypass test
	return e
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// countingHandler answers 201 with a running counter so replays are visible.
func countingHandler(n *atomic.Int32) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]any{"call": n.Add(1)})
	}
}

func Test_BypassOnGET(t *testing.T) {
	_, rdb := newMiniRedis(t)
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/loans", "", map[string]string{HeaderIdempotencyKey: "bad"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_NoKey_PassesThrough(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))

	for i := 0; i < 2; i++ {
		if rec := doReq(t, e, http.MethodPost, "/loans", `{"x":1}`, nil); rec.Code != http.StatusCreated {
			t.Fatalf("want 201, got %d", rec.Code)
		}
	}
	if n.Load() != 2 {
		t.Fatalf("handler should run for every keyless request, ran %d", n.Load())
	}
}

func Test_ValidationFailures(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 30*time.Second, countingHandler(&n))

	cases := []struct {
		name string
		hdr  map[string]string
	}{
		{"invalid key", map[string]string{HeaderIdempotencyKey: "NOT-VALID"}},
		{"invalid request-at", map[string]string{HeaderIdempotencyKey: testKey, HeaderRequestAt: "not-a-time"}},
		{"skewed past", map[string]string{HeaderIdempotencyKey: testKey, HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)}},
		{"skewed future", map[string]string{HeaderIdempotencyKey: testKey, HeaderRequestAt: time.Now().UTC().Add(maxClockSkew + time.Minute).Format(time.RFC3339)}},
	}
	for _, tc := range cases {
		if rec := doReq(t, e, http.MethodPost, "/loans", `{"x":1}`, tc.hdr); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s => want 400, got %d", tc.name, rec.Code)
		}
	}
	if n.Load() != 0 {
		t.Fatalf("handler must not run on rejected requests")
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&n))

	h := map[string]string{
		HeaderIdempotencyKey: testKey,
		HeaderRequestAt:      time.Now().UTC().Format(time.RFC3339),
	}
	rec1 := doReq(t, e, http.MethodPost, "/loans", `{"amount":5000}`, h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	rec2 := doReq(t, e, http.MethodPost, "/loans", `{"amount":5000}`, h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay should be marked")
	}
	if n.Load() != 1 {
		t.Fatalf("handler ran %d times, want 1", n.Load())
	}
}

func Test_KeyScopedByCaller(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))

	doReq(t, e, http.MethodPost, "/loans", `{}`, map[string]string{HeaderIdempotencyKey: testKey, "X-Test-User": "user-1"})
	doReq(t, e, http.MethodPost, "/loans", `{}`, map[string]string{HeaderIdempotencyKey: testKey, "X-Test-User": "user-2"})
	if n.Load() != 2 {
		t.Fatalf("same key from different callers must not collide, handler ran %d", n.Load())
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&n))

	body := []byte(`{"x":1}`)
	// seed an in-progress entry so reserve fails and the handler sees InProgress
	key := buildKey(http.MethodPost, "/loans", "user-1", testKey)
	entry := idempEntry{InProgress: true, BodySHA256: bodyHash(body), Key: testKey, CreatedAt: nowUTC()}
	if ok, err := (entryStore{rdb: rdb}).reserve(context.Background(), key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, http.MethodPost, "/loans", string(body), map[string]string{HeaderIdempotencyKey: testKey})
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameKey_DifferentBody(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&n))

	h := map[string]string{HeaderIdempotencyKey: testKey}
	if rec := doReq(t, e, http.MethodPost, "/loans", `{"x":1}`, h); rec.Code != http.StatusCreated {
		t.Fatalf("first => want 201, got %d", rec.Code)
	}
	if rec := doReq(t, e, http.MethodPost, "/loans", `{"x":2}`, h); rec.Code != http.StatusConflict {
		t.Fatalf("different body same key => want 409, got %d", rec.Code)
	}
}

func Test_ServerError_NotRecorded(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		if n.Add(1) == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "boom"})
		}
		return c.JSON(http.StatusCreated, map[string]bool{"ok": true})
	})

	h := map[string]string{HeaderIdempotencyKey: testKey}
	if rec := doReq(t, e, http.MethodPost, "/loans", `{}`, h); rec.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec.Code)
	}
	if mr.Exists(buildKey(http.MethodPost, "/loans", "user-1", testKey)) {
		t.Fatalf("5xx response must release the key")
	}
	if rec := doReq(t, e, http.MethodPost, "/loans", `{}`, h); rec.Code != http.StatusCreated {
		t.Fatalf("retry => want 201, got %d", rec.Code)
	}
}

func Test_HandlerError_IsRecorded(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		n.Add(1)
		return echo.NewHTTPError(http.StatusBadRequest, "nope")
	})

	h := map[string]string{HeaderIdempotencyKey: testKey}
	rec1 := doReq(t, e, http.MethodPost, "/loans", `{}`, h)
	rec2 := doReq(t, e, http.MethodPost, "/loans", `{}`, h)
	if rec1.Code != http.StatusBadRequest || rec2.Code != http.StatusBadRequest {
		t.Fatalf("want 400 twice, got %d and %d", rec1.Code, rec2.Code)
	}
	if !bytes.Equal(rec1.Body.Bytes(), rec2.Body.Bytes()) || n.Load() != 1 {
		t.Fatalf("4xx should be replayed without rerunning the handler (ran %d)", n.Load())
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// Create a client that points to a closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))

	rec := doReq(t, e, http.MethodPost, "/loans", `{}`, map[string]string{HeaderIdempotencyKey: testKey})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func Test_UnreadableBody_Returns400(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	var n atomic.Int32
	e := setupEcho(rdb, time.Minute, countingHandler(&n))

	req := httptest.NewRequest(http.MethodPost, "/loans", brokenBody{})
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderIdempotencyKey, testKey)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if n.Load() != 0 {
		t.Fatalf("handler ran on an unreadable body")
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("nothing should be stored, got %v", keys)
	}
}
