package memory

import (
	"context"
	"sync"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/logger"
	"github.com/avstrong/luxestay/internal/storage"
)

type Config struct {
	L   *logger.Logger
	Key string
	// Initial is the raw value stored under Key at startup, if any.
	Initial []byte
}

// DB keeps the encoded bookings collection in a process-local key-value map.
type DB struct {
	mu   sync.Mutex
	l    *logger.Logger
	key  string
	data map[string][]byte
}

func New(conf Config) *DB {
	key := conf.Key
	if key == "" {
		key = storage.DefaultKey
	}

	l := conf.L
	if l == nil {
		l = logger.Discard()
	}

	db := &DB{
		l:    l,
		key:  key,
		data: make(map[string][]byte),
	}

	if conf.Initial != nil {
		db.data[key] = append([]byte(nil), conf.Initial...)
	}

	return db
}

func (db *DB) Key() string {
	return db.key
}

// Ensure writes an empty collection when the key is absent and reports whether it did.
func (db *DB) Ensure(_ context.Context) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.data[db.key]; ok {
		return false, nil
	}

	data, err := storage.Encode(nil)
	if err != nil {
		return false, err
	}

	db.data[db.key] = data

	return true, nil
}

func (db *DB) List(_ context.Context) ([]booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return storage.Decode(db.data[db.key])
}

func (db *DB) Append(_ context.Context, b booking.Booking, guard booking.Guard) error {
	return db.mutate(func(bookings []booking.Booking) ([]booking.Booking, error) {
		return storage.AppendGuarded(bookings, b, guard)
	})
}

func (db *DB) UpdateStatus(_ context.Context, id string, status booking.Status) error {
	return db.mutate(func(bookings []booking.Booking) ([]booking.Booking, error) {
		return storage.SetStatus(bookings, id, status)
	})
}

// Raw returns the stored bytes, or ErrKeyNotSet.
func (db *DB) Raw(_ context.Context) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, ok := db.data[db.key]
	if !ok {
		return nil, ErrKeyNotSet
	}

	return append([]byte(nil), data...), nil
}

func (db *DB) mutate(fn func([]booking.Booking) ([]booking.Booking, error)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	bookings, err := storage.Decode(db.data[db.key])
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

	db.data[db.key] = data
	db.l.LogDebugf("Key %v rewritten with %d bookings", db.key, len(bookings))

	return nil
}
