package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/luxestay/internal/catalog"
	"github.com/avstrong/luxestay/internal/logger"
)

var validate = validator.New()

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

// Guard runs against the stored bookings inside the store's write section.
// A non-nil error aborts the write and is returned unchanged.
type Guard func(existing []Booking) error

type storageReader interface {
	List(ctx context.Context) ([]Booking, error)
}

type storageWriter interface {
	Append(ctx context.Context, b Booking, guard Guard) error
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type storage interface {
	storageReader
	storageWriter
}

type roomFinder interface {
	Room(id string) (catalog.Room, error)
}

type Manager struct {
	l           *logger.Logger
	storage     storage
	rooms       roomFinder
	idGenerator idGenerator
	tracer      trace.Tracer
	now         func() time.Time
}

func New(l *logger.Logger, storage storage, rooms roomFinder, idGenerator idGenerator, tracer trace.Tracer) *Manager {
	return &Manager{
		l:           l,
		storage:     storage,
		rooms:       rooms,
		idGenerator: idGenerator,
		tracer:      tracer,
		now:         time.Now,
	}
}

func (s Stay) validate(inputErr *InputError) {
	if s.CheckIn.IsZero() {
		inputErr.addError("stay.checkIn", "provide stay.checkIn")
	}

	if s.CheckOut.IsZero() {
		inputErr.addError("stay.checkOut", "provide stay.checkOut")
	}

	if !s.CheckIn.IsZero() && !s.CheckOut.IsZero() && s.Nights() <= 0 {
		inputErr.addError("stay.checkOut", "stay.checkOut must be after stay.checkIn")
	}
}

func (b *BookInput) validate() error {
	inputErr := newInputError()

	if strings.TrimSpace(b.RoomID) == "" {
		inputErr.addError("roomId", "provide roomId")
	}

	if strings.TrimSpace(b.Guest.Name) == "" {
		inputErr.addError("guest.name", "provide guest.name")
	}

	if strings.TrimSpace(b.Guest.Email) == "" {
		inputErr.addError("guest.email", "provide guest.email")
	} else if err := validate.Var(strings.TrimSpace(b.Guest.Email), "email"); err != nil {
		inputErr.addError("guest.email", "provide valid email")
	}

	b.Stay.validate(inputErr)

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// ValidateDetails checks guest details and dates without touching storage.
func ValidateDetails(input *BookInput) error {
	return input.validate()
}

func ValidateStay(stay Stay) error {
	inputErr := newInputError()
	stay.validate(inputErr)

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}

func (m *Manager) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "booking."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// Quote prices a stay. The total is nights times the room's nightly price.
func (m *Manager) Quote(roomID string, stay Stay) (*Quote, error) {
	if err := ValidateStay(stay); err != nil {
		return nil, err
	}

	room, err := m.rooms.Room(roomID)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}

	nights := stay.Nights()

	return &Quote{
		RoomID:        room.ID,
		RoomName:      room.Name,
		Nights:        nights,
		PricePerNight: room.PricePerNight,
		TotalPrice:    int64(nights) * room.PricePerNight,
	}, nil
}

// conflicts returns the confirmed stays on roomID that overlap stay.
func conflicts(bookings []Booking, roomID string, stay Stay) []Stay {
	var out []Stay

	for i := range bookings {
		b := &bookings[i]
		if b.RoomID != roomID || b.Status != StatusConfirmed {
			continue
		}

		if existing := b.Stay(); stay.Overlaps(existing) {
			out = append(out, existing)
		}
	}

	return out
}

func availabilityErr(roomID string, stay Stay, conflicting []Stay) error {
	if len(conflicting) == 0 {
		return nil
	}

	err := NewAvailabilityError()
	err.AddUnavailableRoom(roomID, stay, conflicting)

	return err
}

// EnsureAvailable returns an *AvailabilityError when a confirmed booking on the
// room overlaps the stay. Cancelled bookings never block.
func (m *Manager) EnsureAvailable(ctx context.Context, roomID string, stay Stay) (err error) {
	ctx, span := m.startSpan(ctx, "EnsureAvailable", attribute.String("room.id", roomID))
	defer func() { endSpan(span, err) }()

	if err = ValidateStay(stay); err != nil {
		return err
	}

	if _, err = m.rooms.Room(roomID); err != nil {
		return fmt.Errorf("find room: %w", err)
	}

	bookings, err := m.storage.List(ctx)
	if err != nil {
		return fmt.Errorf("list bookings from storage: %w", err)
	}

	return availabilityErr(roomID, stay, conflicts(bookings, roomID, stay))
}

func (m *Manager) IsRoomAvailable(ctx context.Context, roomID string, stay Stay) (bool, error) {
	err := m.EnsureAvailable(ctx, roomID, stay)
	if IsAvailabilityError(err) != nil {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (m *Manager) buildBooking(ctx context.Context, input *BookInput, room catalog.Room, key string) (*Booking, error) {
	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		return nil, ErrNextID
	}

	nights := input.Stay.Nights()

	return &Booking{
		ID:             id,
		RoomID:         room.ID,
		RoomName:       room.Name,
		GuestName:      strings.TrimSpace(input.Guest.Name),
		GuestEmail:     strings.TrimSpace(input.Guest.Email),
		CheckIn:        input.Stay.CheckIn,
		CheckOut:       input.Stay.CheckOut,
		TotalPrice:     int64(nights) * room.PricePerNight,
		Status:         StatusConfirmed,
		CreatedAt:      m.now().UTC(),
		IdempotencyKey: key,
	}, nil
}

func findByIdempotencyKey(bookings []Booking, key string) *Booking {
	for i := range bookings {
		if bookings[i].IdempotencyKey == key {
			b := bookings[i]

			return &b
		}
	}

	return nil
}

// BookingByIdempotencyKey returns ErrRecordNotFound when no booking carries key.
func (m *Manager) BookingByIdempotencyKey(ctx context.Context, key string) (*Booking, error) {
	bookings, err := m.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings from storage: %w", err)
	}

	if b := findByIdempotencyKey(bookings, key); b != nil {
		return b, nil
	}

	return nil, ErrRecordNotFound
}

// CreateBooking stores a confirmed booking. The overlap check runs again inside
// the store's write section, so concurrent requests for the same nights cannot both succeed.
// A repeated call carrying the same idempotency key returns the first booking.
// Once ctx is done, nothing is written.
func (m *Manager) CreateBooking(ctx context.Context, input *BookInput) (_ *Booking, err error) {
	ctx, span := m.startSpan(ctx, "CreateBooking", attribute.String("room.id", input.RoomID))
	defer func() { endSpan(span, err) }()

	if err = input.validate(); err != nil {
		return nil, err
	}

	key, _ := IdempotencyKeyFromContext(ctx)
	if key != "" {
		existing, err := m.BookingByIdempotencyKey(ctx, key)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return nil, fmt.Errorf("get booking by idempotency key: %w", err)
		}

		if existing != nil {
			return existing, nil
		}
	}

	room, err := m.rooms.Room(input.RoomID)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}

	b, err := m.buildBooking(ctx, input, room, key)
	if err != nil {
		return nil, fmt.Errorf("build booking: %w", err)
	}

	// A caller that gave up before the write section must not end up with a booking.
	guard := func(existing []Booking) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if key != "" && findByIdempotencyKey(existing, key) != nil {
			return ErrIdempotencyKey
		}

		return availabilityErr(room.ID, input.Stay, conflicts(existing, room.ID, input.Stay))
	}

	err = m.storage.Append(ctx, *b, guard)
	if errors.Is(err, ErrIdempotencyKey) {
		existing, err := m.BookingByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("get booking by idempotency key: %w", err)
		}

		return existing, nil
	}

	if IsAvailabilityError(err) != nil {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("save booking to storage: %w", err)
	}

	m.l.LogInfo("Booking %v confirmed for room %v from %v to %v, total %v", b.ID, b.RoomID, b.CheckIn, b.CheckOut, b.TotalPrice)

	return b, nil
}

func (m *Manager) GetBooking(ctx context.Context, id string) (*Booking, error) {
	bookings, err := m.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings from storage: %w", err)
	}

	for i := range bookings {
		if bookings[i].ID == id {
			b := bookings[i]

			return &b, nil
		}
	}

	return nil, fmt.Errorf("booking %q: %w", id, ErrRecordNotFound)
}

// ListBookings keeps stored insertion order.
func (m *Manager) ListBookings(ctx context.Context, f ListFilter) (_ []Booking, err error) {
	ctx, span := m.startSpan(ctx, "ListBookings")
	defer func() { endSpan(span, err) }()

	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%q: %w", f.Status, ErrInvalidStatus)
	}

	bookings, err := m.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings from storage: %w", err)
	}

	out := make([]Booking, 0, len(bookings))

	for i := range bookings {
		if f.match(&bookings[i]) {
			out = append(out, bookings[i])
		}
	}

	return out, nil
}

// CancelBooking flips a confirmed booking to cancelled. Cancelling twice is a no-op.
// An unknown id leaves storage untouched and yields ErrRecordNotFound.
func (m *Manager) CancelBooking(ctx context.Context, id string) (_ *Booking, err error) {
	ctx, span := m.startSpan(ctx, "CancelBooking", attribute.String("booking.id", id))
	defer func() { endSpan(span, err) }()

	b, err := m.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status == StatusCancelled {
		return b, nil
	}

	if err = m.storage.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, fmt.Errorf("update booking status in storage: %w", err)
	}

	b.Status = StatusCancelled

	m.l.LogInfo("Booking %v cancelled", b.ID)

	return b, nil
}
