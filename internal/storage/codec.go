package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/avstrong/luxestay/internal/booking"
)

// DefaultKey is the one key the whole bookings collection lives under.
const DefaultKey = "luxestay_bookings"

// Decode treats missing or blank data as an empty collection.
func Decode(data []byte) ([]booking.Booking, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []booking.Booking{}, nil
	}

	var bookings []booking.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, fmt.Errorf("%w: %w", booking.ErrCorruptedData, err)
	}

	if bookings == nil {
		bookings = []booking.Booking{}
	}

	return bookings, nil
}

func Encode(bookings []booking.Booking) ([]byte, error) {
	if bookings == nil {
		bookings = []booking.Booking{}
	}

	data, err := json.Marshal(bookings)
	if err != nil {
		return nil, fmt.Errorf("encode bookings: %w", err)
	}

	return data, nil
}

// AppendGuarded runs guard against bookings and appends b when it passes.
func AppendGuarded(bookings []booking.Booking, b booking.Booking, guard booking.Guard) ([]booking.Booking, error) {
	if guard != nil {
		if err := guard(bookings); err != nil {
			return nil, err
		}
	}

	return append(bookings, b), nil
}

func SetStatus(bookings []booking.Booking, id string, status booking.Status) ([]booking.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, booking.ErrInvalidStatus)
	}

	for i := range bookings {
		if bookings[i].ID == id {
			bookings[i].Status = status

			return bookings, nil
		}
	}

	return nil, fmt.Errorf("booking %q: %w", id, booking.ErrRecordNotFound)
}
