package main

import (
	"context"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/streadway/amqp"
	"github.com/xor-shift/simdpcg/common"
	"github.com/xor-shift/simdpcg/stream"
)

// handleDelivery decodes one published batch and checks it against its
// session's seed.
func handleDelivery(verifier *stream.Verifier, delivery amqp.Delivery) error {
	batch, err := common.DecodeBatch(delivery.Body)
	if err != nil {
		return err
	}

	if err = verifier.Check(context.Background(), batch); err != nil {
		return err
	}

	golog.Debugf("verified batch %d+%d of session %d", batch.Sequence, len(batch.Words), batch.SessionID)
	return nil
}

func newApp(verifier *stream.Verifier) *iris.Application {
	app := iris.New()

	app.Get("/test", func(ctx iris.Context) {
		_, _ = ctx.Text("OK")
	})

	app.Get("/status", func(ctx iris.Context) {
		_, _ = ctx.JSON(verifier.Stats())
	})

	return app
}

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		golog.Fatalf("loading config failed: %s", err)
	}

	cfg.SetupLogging()

	db, err := common.OpenDB(cfg)
	if err != nil {
		golog.Fatalf("opening the database failed: %s", err)
	}
	defer db.Close()

	verifier := stream.NewVerifier(common.NewSessionStore(db))

	consumer, err := common.NewAMQPConsumer(
		cfg.AMQPURL,
		cfg.AMQPExchange,
		"consumer_verify_queue",
		"consumer_verify_consumer",
		func(delivery amqp.Delivery) error {
			return handleDelivery(verifier, delivery)
		})
	if err != nil {
		golog.Fatalf("connecting to amqp failed: %s", err)
	}
	defer consumer.Close()

	if err = consumer.Start(); err != nil {
		golog.Fatalf("%s", err)
	}

	app := newApp(verifier)
	app.Logger().SetLevel(cfg.LogLevel)

	iris.RegisterOnInterrupt(func() {
		if err := consumer.Stop(); err != nil {
			golog.Warnf("stopping the consumer: %s", err)
			return
		}
		consumer.Wait()
	})

	if err = common.Serve(app, iris.Addr(cfg.ListenAddr)); err != nil {
		golog.Errorf("%s", err)
	}
}
