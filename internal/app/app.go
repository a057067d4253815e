package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/catalog"
	"github.com/avstrong/luxestay/internal/checkout"
	"github.com/avstrong/luxestay/internal/config"
	"github.com/avstrong/luxestay/internal/idgen/uuidgen"
	"github.com/avstrong/luxestay/internal/logger"
	"github.com/avstrong/luxestay/internal/migration"
	"github.com/avstrong/luxestay/internal/payment"
	"github.com/avstrong/luxestay/internal/storage/memory"
	"github.com/avstrong/luxestay/internal/storage/redis"
	"github.com/avstrong/luxestay/internal/transport/web"
)

const tracerName = "github.com/avstrong/luxestay"

type bookingStore interface {
	Ensure(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]booking.Booking, error)
	Append(ctx context.Context, b booking.Booking, guard booking.Guard) error
	UpdateStatus(ctx context.Context, id string, status booking.Status) error
}

func newTracerProvider(serviceName string) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	return sdktrace.NewTracerProvider(sdktrace.WithResource(r)), nil
}

func openStorage(ctx context.Context, conf *config.Config, l *logger.Logger) (bookingStore, func(), error) {
	if conf.StorageDriver != config.DriverRedis {
		db := memory.New(memory.Config{L: l, Key: conf.BookingsKey})

		return db, func() {}, nil
	}

	//nolint:exhaustruct
	client := goredis.NewClient(&goredis.Options{
		Addr:     conf.RedisAddr,
		Username: conf.RedisUser,
		Password: conf.RedisPassword,
		DB:       conf.RedisDB,
	})

	//nolint:exhaustruct
	db := redis.New(redis.Config{L: l, Client: client, Key: conf.BookingsKey})

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()

		return nil, nil, fmt.Errorf("connect to redis at %v: %w", conf.RedisAddr, err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			l.LogErrorf("Failed to close redis client: %v", err.Error())
		}
	}

	return db, closeFn, nil
}

func Run(conf *config.Config, l *logger.Logger) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGHUP,
	)
	defer cancel()

	tp, err := newTracerProvider(conf.ServiceName)
	if err != nil {
		return err
	}

	otel.SetTracerProvider(tp)

	defer func() {
		//nolint:contextcheck
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			l.LogErrorf("Failed to stop tracer provider: %v", err.Error())
		}
	}()

	tracer := tp.Tracer(tracerName)

	store, closeStore, err := openStorage(ctx, conf, l.WithField("component", "storage"))
	if err != nil {
		return fmt.Errorf("open %v storage: %w", conf.StorageDriver, err)
	}
	defer closeStore()

	if err = migration.Up(ctx, l, store); err != nil {
		return fmt.Errorf("up bookings migration: %w", err)
	}

	l.LogInfo("Bookings migration has been applied to %v storage", conf.StorageDriver)

	rooms := catalog.Default()
	bookManager := booking.New(l.WithField("component", "booking"), store, rooms, uuidgen.New(), tracer)

	if conf.SeedDemoBookings {
		if err = migration.SeedDemo(ctx, l, bookManager); err != nil {
			return fmt.Errorf("seed demo bookings: %w", err)
		}
	}

	payments := payment.New(payment.Conf{L: l.WithField("component", "payment"), Delay: conf.PaymentDelay})
	checkouts := checkout.New(checkout.Conf{L: l.WithField("component", "checkout")}, rooms, bookManager, payments, uuidgen.New())

	sweeper, err := checkout.NewSweeper(checkout.SweeperConf{
		L:    l.WithField("component", "sweeper"),
		Spec: conf.CheckoutSweepSpec,
		TTL:  conf.CheckoutSessionTTL,
	}, checkouts)
	if err != nil {
		return fmt.Errorf("init checkout sweeper: %w", err)
	}

	sweeper.Start()
	defer sweeper.Stop()

	webConf := web.Conf{
		L:                 l.WithField("component", "web"),
		ServerLogger:      l.StdLogger(),
		Addr:              conf.Addr(),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		LivenessEndpoint:  "/liveness",
		AllowedOrigins:    conf.CORSOrigins,
	}

	srv, err := web.New(ctx, webConf, rooms, bookManager, checkouts, tracer)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	//nolint:contextcheck
	go func() {
		<-ctx.Done()

		ctx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
		defer cancel()

		if err := srv.Srv().Shutdown(ctx); err != nil {
			l.LogErrorf("Failed to stop http server: %v", err.Error())
		}
	}()

	l.LogInfo("Application is running on %v...", webConf.Addr)

	if err = serve(srv.Srv()); err != nil {
		l.LogErrorf("Failed to run http server: %v", err.Error())

		return err
	}

	l.LogInfo("Application stopped gracefully")

	return nil
}

// serve blocks until srv stops. A shutdown is not an error.
func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("run http server on %v: %w", srv.Addr, err)
	}

	return nil
}
