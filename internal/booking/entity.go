package booking

import (
	"strings"
	"time"
)

type Status string

const (
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Stay is the half-open range [CheckIn, CheckOut).
type Stay struct {
	CheckIn  Date `json:"checkIn"`
	CheckOut Date `json:"checkOut"`
}

func (s Stay) Nights() int {
	return s.CheckIn.DaysUntil(s.CheckOut)
}

// Overlaps reports whether two stays share at least one night.
// Back-to-back stays, where one checks out on the day the other checks in, do not overlap.
func (s Stay) Overlaps(o Stay) bool {
	return s.CheckIn.Before(o.CheckOut) && s.CheckOut.After(o.CheckIn)
}

type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookInput struct {
	RoomID string `json:"roomId"`
	Guest  Guest  `json:"guest"`
	Stay   Stay   `json:"stay"`
}

type Booking struct {
	ID             string    `json:"id"`
	RoomID         string    `json:"roomId"`
	RoomName       string    `json:"roomName"`
	GuestName      string    `json:"guestName"`
	GuestEmail     string    `json:"guestEmail"`
	CheckIn        Date      `json:"checkIn"`
	CheckOut       Date      `json:"checkOut"`
	TotalPrice     int64     `json:"totalPrice"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
}

func (b *Booking) Stay() Stay {
	return Stay{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Quote is what a stay costs before it is booked.
type Quote struct {
	RoomID        string `json:"roomId"`
	RoomName      string `json:"roomName"`
	Nights        int    `json:"nights"`
	PricePerNight int64  `json:"pricePerNight"`
	TotalPrice    int64  `json:"totalPrice"`
}

type ListFilter struct {
	Status     Status
	GuestEmail string
}

func (f ListFilter) match(b *Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}

	if f.GuestEmail != "" && !strings.EqualFold(b.GuestEmail, f.GuestEmail) {
		return false
	}

	return true
}
