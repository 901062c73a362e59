package main

import (
	"errors"
	"net/http"
	"sync"

	"github.com/kataras/iris/v12"
	"github.com/xor-shift/simdpcg/common"
	"github.com/xor-shift/simdpcg/stream"
	"github.com/xor-shift/simdpcg/util/rng"
)

const (
	maxSteps = 1 << 16
	maxBytes = 1 << 20
)

// server serves ad-hoc draws from its own generator alongside the published
// session stream.
type server struct {
	streamer *stream.Streamer
	steps    uint

	mu     sync.Mutex
	source *rng.Source
}

func newApp(streamer *stream.Streamer, source *rng.Source, cfg common.Config) *iris.Application {
	srv := &server{
		streamer: streamer,
		steps:    cfg.BatchSteps,
		source:   source,
	}

	app := iris.New()

	app.Get("/session", srv.session)
	app.Post("/session/reset", srv.resetSession)
	app.Post("/publish", srv.publish)
	app.Get("/words", srv.words)
	app.Get("/bytes", srv.bytes)

	return app
}

func fail(ctx iris.Context, code int, format string, args ...interface{}) {
	ctx.StatusCode(code)
	_, _ = ctx.Text(format, args...)
}

func (srv *server) session(ctx iris.Context) {
	session, err := srv.streamer.Session()
	if err != nil {
		fail(ctx, http.StatusServiceUnavailable, "%s", err)
		return
	}

	_, _ = ctx.JSON(session)
}

func (srv *server) resetSession(ctx iris.Context) {
	ctx.Application().Logger().Infof("session reset request from %s", ctx.RemoteAddr())

	session, err := srv.streamer.Reset(ctx.Request().Context())
	if err != nil {
		ctx.Application().Logger().Errorf("session reset failed: %s", err)
		fail(ctx, http.StatusInternalServerError, "session reset failed")
		return
	}

	_, _ = ctx.JSON(session)
}

// stepsParam reads the "steps" query parameter, falling back to def.
func stepsParam(ctx iris.Context, def uint) (uint, bool) {
	steps := ctx.URLParamIntDefault("steps", int(def))
	if steps <= 0 || steps > maxSteps {
		fail(ctx, http.StatusBadRequest, "steps must be in [1, %d]", maxSteps)
		return 0, false
	}

	return uint(steps), true
}

func (srv *server) publish(ctx iris.Context) {
	steps, ok := stepsParam(ctx, srv.steps)
	if !ok {
		return
	}

	err := srv.streamer.Request(steps)
	if errors.Is(err, stream.ErrQueueFull) || errors.Is(err, stream.ErrStopped) {
		fail(ctx, http.StatusServiceUnavailable, "%s", err)
		return
	}
	if err != nil {
		fail(ctx, http.StatusBadRequest, "%s", err)
		return
	}

	ctx.StatusCode(http.StatusAccepted)
}

func (srv *server) words(ctx iris.Context) {
	steps, ok := stepsParam(ctx, 1)
	if !ok {
		return
	}

	words := make([][4]uint32, steps)

	srv.mu.Lock()
	gen := srv.source.Generator()
	for i := range words {
		words[i] = gen.Next()
	}
	srv.mu.Unlock()

	_, _ = ctx.JSON(iris.Map{"words": words})
}

func (srv *server) bytes(ctx iris.Context) {
	n := ctx.URLParamIntDefault("n", 16)
	if n < 0 || n > maxBytes {
		fail(ctx, http.StatusBadRequest, "n must be in [0, %d]", maxBytes)
		return
	}

	buf := make([]byte, n)

	srv.mu.Lock()
	srv.source.FillBytes(buf)
	srv.mu.Unlock()

	_, _ = ctx.Binary(buf)
}
