// README: Entry point; loads config, wires the fulfillment core, starts the
// HTTP server, and shuts down on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"catering/internal/config"
	httptransport "catering/internal/http"
	"catering/internal/infra"
	"catering/internal/modules/fulfillment"
	"catering/internal/modules/order"
	"catering/internal/modules/status"
	"catering/internal/modules/tracking"
	"catering/internal/notify"
	"catering/internal/providers/kfc"
	"catering/internal/providers/silpo"
	"catering/internal/providers/uklon"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	var notifier fulfillment.Notifier = fulfillment.NopNotifier{}
	mq, err := infra.NewAMQP(cfg.AMQP.URL)
	if err != nil {
		// Notifications are best-effort; the pipeline runs without them.
		log.Warn("amqp unavailable, notifications disabled", "error", err)
	} else {
		defer mq.Close()
		publisher, err := notify.NewPublisher(mq.Ch)
		if err != nil {
			log.Error("declare notification exchange", "error", err)
			os.Exit(1)
		}
		notifier = publisher
	}

	orderStore := order.NewStore(dbPool)
	ledger := tracking.NewLedger(tracking.NewRedisCache(redisClient), cfg.Tracking.TTL)
	mapper := status.NewMapper()

	silpoClient := silpo.NewClient(cfg.Providers.SilpoBaseURL, nil)
	kfcClient := kfc.NewClient(cfg.Providers.KfcBaseURL, nil)
	uklonClient := uklon.NewClient(cfg.Providers.UklonBaseURL, nil)

	dispatcher := fulfillment.NewDispatcher(
		"uklon", fulfillment.UklonAPI{Client: uklonClient},
		ledger, mapper, orderStore, notifier, orderStore, log,
	)
	aggregator := fulfillment.NewAggregator(ledger, orderStore, notifier, dispatcher, log)

	scheduler := fulfillment.NewScheduler(ctx, ledger, log)
	scheduler.Register("silpo", fulfillment.NewPollWorker(
		"silpo", fulfillment.SilpoAPI{Client: silpoClient},
		ledger, mapper, orderStore, notifier, aggregator, cfg.Tracking.PollInterval, log,
	))
	scheduler.Register("kfc", fulfillment.NewSingleShotWorker(
		"kfc", fulfillment.KfcAPI{Client: kfcClient},
		ledger, mapper, aggregator, log,
	))

	webhooks := fulfillment.NewWebhookService(ledger, mapper, orderStore, notifier, aggregator, log)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Webhooks:    webhooks,
		Ledger:      ledger,
		Orders:      orderStore,
		Scheduler:   scheduler,
		KfcSecret:   cfg.Webhooks.KfcSecret,
		UklonSecret: cfg.Webhooks.UklonSecret,
		Log:         log,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
		scheduler.Wait()
	}()

	log.Info("catering fulfillment listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "error", err)
		os.Exit(1)
	}
}
