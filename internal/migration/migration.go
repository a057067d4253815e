package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/logger"
)

type storage interface {
	Ensure(ctx context.Context) (bool, error)
	List(ctx context.Context) ([]booking.Booking, error)
}

type bookingCreator interface {
	CreateBooking(ctx context.Context, input *booking.BookInput) (*booking.Booking, error)
}

// Up makes sure the bookings key holds a readable collection. A missing key is
// initialised to an empty list. Unreadable data is reported and left untouched.
func Up(ctx context.Context, l *logger.Logger, storage storage) error {
	created, err := storage.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("ensure bookings collection: %w", err)
	}

	if created {
		l.LogInfo("Bookings collection has been created")
	}

	bookings, err := storage.List(ctx)
	if err != nil {
		return fmt.Errorf("read bookings collection: %w", err)
	}

	l.LogInfo("Bookings collection holds %d bookings", len(bookings))

	return nil
}

func date(year, month, day int) booking.Date {
	return booking.NewDate(year, time.Month(month), day)
}

func demoBookings() []booking.BookInput {
	return []booking.BookInput{
		{
			RoomID: "1",
			Guest:  booking.Guest{Name: "Demo Guest", Email: "demo@luxestay.example"},
			Stay:   booking.Stay{CheckIn: date(2024, 6, 1), CheckOut: date(2024, 6, 4)},
		},
		{
			RoomID: "5",
			Guest:  booking.Guest{Name: "Demo Guest", Email: "demo@luxestay.example"},
			Stay:   booking.Stay{CheckIn: date(2024, 7, 10), CheckOut: date(2024, 7, 12)},
		},
	}
}

// SeedDemo stores a few demo bookings. Every booking carries its own idempotency
// key, so running it again does not duplicate them. A demo stay that clashes with
// a real booking is skipped.
func SeedDemo(ctx context.Context, l *logger.Logger, creator bookingCreator) error {
	for i, input := range demoBookings() {
		input := input
		ctx := booking.NewContextWithIdempotencyKey(ctx, fmt.Sprintf("migration:demo-%d", i+1))

		b, err := creator.CreateBooking(ctx, &input)
		if availErr := booking.IsAvailabilityError(err); availErr != nil {
			l.LogWarnf("Demo booking %d skipped: %v", i+1, availErr)

			continue
		}

		if err != nil {
			return fmt.Errorf("seed demo booking %d: %w", i+1, err)
		}

		l.LogDebugf("Demo booking %v is in place", b.ID)
	}

	l.LogInfo("Demo bookings have been seeded")

	return nil
}
