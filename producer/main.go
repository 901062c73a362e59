package main

import (
	"context"
	"crypto/rand"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/xor-shift/simdpcg/common"
	"github.com/xor-shift/simdpcg/stream"
	"github.com/xor-shift/simdpcg/util/rng"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		golog.Fatalf("loading config failed: %s", err)
	}

	cfg.SetupLogging()

	backend, err := cfg.Backend()
	if err != nil {
		golog.Fatalf("%s", err)
	}

	db, err := common.OpenDB(cfg)
	if err != nil {
		golog.Fatalf("opening the database failed: %s", err)
	}
	defer db.Close()

	store := common.NewSessionStore(db)
	if err = store.Migrate(context.Background()); err != nil {
		golog.Fatalf("creating the sessions table failed: %s", err)
	}

	publisher, err := common.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		golog.Fatalf("connecting to amqp failed: %s", err)
	}
	defer publisher.Close()

	streamer := stream.NewStreamer(store, publisher, backend, rand.Reader)
	if _, err = streamer.Reset(context.Background()); err != nil {
		golog.Fatalf("starting the first session failed: %s", err)
	}

	streamer.Start(cfg.Workers)
	defer streamer.Stop()

	gen, err := rng.FromEntropy(backend, rand.Reader)
	if err != nil {
		golog.Fatalf("seeding the http generator failed: %s", err)
	}

	app := newApp(streamer, rng.NewSource(gen), cfg)
	app.Logger().SetLevel(cfg.LogLevel)

	iris.RegisterOnInterrupt(func() {
		golog.Infof("shutting down")
	})

	if err = common.Serve(app, iris.Addr(cfg.ListenAddr)); err != nil {
		golog.Errorf("%s", err)
	}
}
