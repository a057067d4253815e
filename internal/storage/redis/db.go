package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/logger"
	"github.com/avstrong/luxestay/internal/storage"
)

const defaultMaxRetries = 5

type Config struct {
	L      *logger.Logger
	Client goredis.UniversalClient
	Key    string
	// MaxRetries bounds optimistic transaction retries when the key changes under WATCH.
	MaxRetries int
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// DB stores the bookings collection as one JSON value under a single Redis key.
// Writes are WATCH/MULTI transactions so concurrent writers never lose updates.
type DB struct {
	l          *logger.Logger
	client     goredis.UniversalClient
	key        string
	maxRetries int
	cb         *gobreaker.CircuitBreaker
}

func New(conf Config) *DB {
	l := conf.L
	if l == nil {
		l = logger.Discard()
	}

	key := conf.Key
	if key == "" {
		key = storage.DefaultKey
	}

	maxRetries := conf.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	return &DB{
		l:          l,
		client:     conf.Client,
		key:        key,
		maxRetries: maxRetries,
		cb:         newCircuitBreaker("redis-bookings", conf.BreakerTimeout, l),
	}
}

func newCircuitBreaker(name string, timeout time.Duration, l *logger.Logger) *gobreaker.CircuitBreaker {
	if timeout <= 0 {
		timeout = 10 * time.Second //nolint:gomnd
	}

	return gobreaker.NewCircuitBreaker(
		//nolint:exhaustruct
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2 //nolint:gomnd
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				l.LogWarnf("Circuit breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
			IsSuccessful: isSuccessful,
		},
	)
}

// isSuccessful keeps domain rejections from tripping the breaker.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}

	return errors.Is(err, booking.ErrRecordNotFound) ||
		errors.Is(err, booking.ErrIdempotencyKey) ||
		errors.Is(err, booking.ErrCorruptedData) ||
		errors.Is(err, booking.ErrInvalidStatus) ||
		booking.IsAvailabilityError(err) != nil
}

func (db *DB) Key() string {
	return db.key
}

func (db *DB) execute(fn func() error) error {
	_, err := db.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return err
}

func (db *DB) Ping(ctx context.Context) error {
	return db.execute(func() error {
		if err := db.client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}

		return nil
	})
}

// Ensure writes an empty collection when the key is absent and reports whether it did.
func (db *DB) Ensure(ctx context.Context) (bool, error) {
	var created bool

	err := db.execute(func() error {
		empty, err := storage.Encode(nil)
		if err != nil {
			return err
		}

		created, err = db.client.SetNX(ctx, db.key, empty, 0).Result()
		if err != nil {
			return fmt.Errorf("setnx %v: %w", db.key, err)
		}

		return nil
	})

	return created, err
}

func (db *DB) List(ctx context.Context) ([]booking.Booking, error) {
	var bookings []booking.Booking

	err := db.execute(func() error {
		raw, err := db.client.Get(ctx, db.key).Bytes()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("get %v: %w", db.key, err)
		}

		bookings, err = storage.Decode(raw)

		return err
	})
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (db *DB) Append(ctx context.Context, b booking.Booking, guard booking.Guard) error {
	return db.mutate(ctx, func(bookings []booking.Booking) ([]booking.Booking, error) {
		return storage.AppendGuarded(bookings, b, guard)
	})
}

func (db *DB) UpdateStatus(ctx context.Context, id string, status booking.Status) error {
	return db.mutate(ctx, func(bookings []booking.Booking) ([]booking.Booking, error) {
		return storage.SetStatus(bookings, id, status)
	})
}

func (db *DB) Close() error {
	return db.client.Close()
}

func (db *DB) mutate(ctx context.Context, fn func([]booking.Booking) ([]booking.Booking, error)) error {
	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, db.key).Bytes()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return fmt.Errorf("get %v: %w", db.key, err)
		}

		bookings, err := storage.Decode(raw)
		if err != nil {
			return err
		}

		bookings, err = fn(bookings)
		if err != nil {
			return err
		}

		data, err := storage.Encode(bookings)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, db.key, data, 0)

			return nil
		})

		return err
	}

	return db.execute(func() error {
		for attempt := 1; attempt <= db.maxRetries; attempt++ {
			err := db.client.Watch(ctx, txf, db.key)
			if errors.Is(err, goredis.TxFailedErr) {
				db.l.LogDebugf("Key %v changed during transaction, attempt %d", db.key, attempt)

				continue
			}

			return err
		}

		return ErrTooManyConflicts
	})
}
