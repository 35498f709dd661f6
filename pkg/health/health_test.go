package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(_ context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(_ context.Context) error { return errors.New(msg) }
}

type status struct {
	Status string
	Checks map[string]string
}

func decodeStatus(t *testing.T, w *httptest.ResponseRecorder) status {
	t.Helper()
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var s status
	err := jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			v, err := d.Str()
			s.Status = v
			return err
		case "checks":
			s.Checks = make(map[string]string)
			return d.Obj(func(d *jx.Decoder, name string) error {
				v, err := d.Str()
				s.Checks[name] = v
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return s
}

func runN(c *check, n int) {
	for range n {
		c.run(context.Background())
	}
}

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		failures   int
		wantCode   int
		wantChecks map[string]string
	}{
		{name: "healthy by default", failures: 0, wantCode: http.StatusOK},
		{name: "below threshold", failures: 2, wantCode: http.StatusOK},
		{
			name:       "at threshold",
			failures:   3,
			wantCode:   http.StatusServiceUnavailable,
			wantChecks: map[string]string{"db": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.Add(Liveness, "db", time.Second, failing("connection refused"))
			h.Add(Liveness, "goroutines", time.Second, passing)
			runN(h.checks[Liveness][0], tt.failures)

			w := serve(h.LiveEndpoint)
			assert.Equal(t, tt.wantCode, w.Code)

			s := decodeStatus(t, w)
			if tt.wantChecks == nil {
				assert.Equal(t, "ok", s.Status)
				assert.Nil(t, s.Checks)
				return
			}
			assert.Equal(t, "unhealthy", s.Status)
			assert.Equal(t, tt.wantChecks, s.Checks)
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("not marked ready", func(t *testing.T) {
		h := New()
		h.Add(Readiness, "catalog", time.Second, passing)

		w := serve(h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, decodeStatus(t, w).Checks, "_readiness")
	})

	t.Run("ready", func(t *testing.T) {
		h := New()
		h.Add(Readiness, "catalog", time.Second, passing)
		h.SetReady(true)

		w := serve(h.ReadyEndpoint)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decodeStatus(t, w).Status)
	})

	t.Run("one of two failing", func(t *testing.T) {
		h := New()
		h.Add(Readiness, "catalog", time.Second, passing)
		h.Add(Readiness, "storage", time.Second, failing("redis down"))
		h.SetReady(true)
		runN(h.checks[Readiness][1], 3)

		w := serve(h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, map[string]string{"storage": "redis down"}, decodeStatus(t, w).Checks)
	})

	t.Run("shutdown clears readiness", func(t *testing.T) {
		h := New()
		h.SetReady(true)
		assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)

		h.SetReady(false)
		assert.Equal(t, http.StatusServiceUnavailable, serve(h.ReadyEndpoint).Code)
	})
}

func TestIsReady(t *testing.T) {
	h := New()
	h.Add(Readiness, "storage", time.Second, failing("down"))
	assert.False(t, h.IsReady())

	h.SetReady(true)
	assert.True(t, h.IsReady(), "checks start healthy")

	runN(h.checks[Readiness][0], 3)
	assert.False(t, h.IsReady())
}

func TestWithThresholds(t *testing.T) {
	down := true
	h := New()
	h.Add(Liveness, "flaky", time.Second, func(context.Context) error {
		if down {
			return errors.New("down")
		}
		return nil
	}, WithThresholds(1, 2))
	c := h.checks[Liveness][0]

	runN(c, 1)
	assert.False(t, c.healthy.Load(), "fails after one error")

	down = false
	runN(c, 1)
	assert.False(t, c.healthy.Load(), "needs two successes")
	runN(c, 1)
	assert.True(t, c.healthy.Load())
}

func TestCheckTimeout(t *testing.T) {
	h := New()
	h.Add(Readiness, "slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithThresholds(1, 1))

	runN(h.checks[Readiness][0], 1)
	msg, failed := h.checks[Readiness][0].failure()
	assert.True(t, failed)
	assert.Contains(t, msg, "deadline exceeded")
}

func TestStartStop(t *testing.T) {
	h := New()
	h.Add(Liveness, "a", time.Second, failing("err"))
	h.Add(Readiness, "b", time.Second, passing)
	h.SetReady(true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 5*time.Millisecond)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				h.IsReady()
				serve(h.LiveEndpoint)
				serve(h.ReadyEndpoint)
			}
		})
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		return serve(h.LiveEndpoint).Code == http.StatusServiceUnavailable
	}, time.Second, 5*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(100000)(context.Background()))

	err := GoroutineCountCheck(0)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds threshold")
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingCheck(t *testing.T) {
	pingErr := errors.New("no route")
	check := PingCheck(pingerFunc(func(context.Context) error { return pingErr }))
	require.ErrorIs(t, check(context.Background()), pingErr)
}
