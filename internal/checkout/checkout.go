package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/catalog"
	"github.com/avstrong/luxestay/internal/logger"
	"github.com/avstrong/luxestay/internal/payment"
)

type idGenerator interface {
	GetID(ctx context.Context) (string, error)
}

type roomFinder interface {
	Room(id string) (catalog.Room, error)
}

type bookingManager interface {
	Quote(roomID string, stay booking.Stay) (*booking.Quote, error)
	EnsureAvailable(ctx context.Context, roomID string, stay booking.Stay) error
	CreateBooking(ctx context.Context, input *booking.BookInput) (*booking.Booking, error)
	BookingByIdempotencyKey(ctx context.Context, key string) (*booking.Booking, error)
}

type charger interface {
	Charge(ctx context.Context, card payment.Card, amount int64) (*payment.Receipt, error)
}

type session struct {
	mu sync.Mutex
	id string
	// idempotencyKey makes the session book at most once.
	idempotencyKey string
	room           catalog.Room
	state          State
	details        *booking.BookInput
	quote          *booking.Quote
	booking        *booking.Booking
	receipt        *payment.Receipt
	lastError      string
	updatedAt      time.Time
	cancel         context.CancelFunc
	dismissed      bool
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID        string             `json:"id"`
	RoomID    string             `json:"roomId"`
	RoomName  string             `json:"roomName"`
	State     State              `json:"state"`
	Details   *booking.BookInput `json:"details,omitempty"`
	Quote     *booking.Quote     `json:"quote,omitempty"`
	Booking   *booking.Booking   `json:"booking,omitempty"`
	Receipt   *payment.Receipt   `json:"receipt,omitempty"`
	LastError string             `json:"lastError,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// snapshot must be called with sess.mu held.
func (sess *session) snapshot() Snapshot {
	snap := Snapshot{
		ID:        sess.id,
		RoomID:    sess.room.ID,
		RoomName:  sess.room.Name,
		State:     sess.state,
		LastError: sess.lastError,
		UpdatedAt: sess.updatedAt,
	}

	if sess.details != nil {
		d := *sess.details
		snap.Details = &d
	}

	if sess.quote != nil {
		q := *sess.quote
		snap.Quote = &q
	}

	if sess.booking != nil {
		b := *sess.booking
		snap.Booking = &b
	}

	if sess.receipt != nil {
		r := *sess.receipt
		snap.Receipt = &r
	}

	return snap
}

type Conf struct {
	L *logger.Logger
}

// Service runs checkout sessions: details, then payment, then confirmation.
type Service struct {
	l        *logger.Logger
	rooms    roomFinder
	bookings bookingManager
	payments charger
	idGen    idGenerator
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func New(conf Conf, rooms roomFinder, bookings bookingManager, payments charger, idGen idGenerator) *Service {
	l := conf.L
	if l == nil {
		l = logger.Discard()
	}

	//nolint:exhaustruct
	return &Service{
		l:        l,
		rooms:    rooms,
		bookings: bookings,
		payments: payments,
		idGen:    idGen,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (s *Service) newSession(ctx context.Context, roomID string) (*session, error) {
	room, err := s.rooms.Room(roomID)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}

	id, err := s.idGen.GetID(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	//nolint:exhaustruct
	return &session{
		id:             id,
		idempotencyKey: "checkout:" + id,
		room:           room,
		state:          StateCollectingDetails,
		updatedAt:      s.now(),
	}, nil
}

func (s *Service) Start(ctx context.Context, roomID string) (Snapshot, error) {
	sess, err := s.newSession(ctx, roomID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.l.LogDebugf("Checkout session %v started for room %v", sess.id, roomID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.snapshot(), nil
}

func (s *Service) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}

	return sess, nil
}

func (s *Service) Get(id string) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.snapshot(), nil
}

func (s *Service) SubmitDetails(ctx context.Context, id string, guest booking.Guest, stay booking.Stay) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}

	return s.submitDetails(ctx, sess, guest, stay)
}

func (s *Service) submitDetails(ctx context.Context, sess *session, guest booking.Guest, stay booking.Stay) (Snapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, err := sess.state.next(eventSubmitDetails)
	if err != nil {
		return sess.snapshot(), err
	}

	input := &booking.BookInput{RoomID: sess.room.ID, Guest: guest, Stay: stay}

	err = s.checkDetails(ctx, input)
	if err != nil {
		sess.lastError = err.Error()
		sess.updatedAt = s.now()

		return sess.snapshot(), err
	}

	quote, err := s.bookings.Quote(sess.room.ID, stay)
	if err != nil {
		return sess.snapshot(), fmt.Errorf("quote stay: %w", err)
	}

	sess.details = input
	sess.quote = quote
	sess.state = next
	sess.lastError = ""
	sess.updatedAt = s.now()

	return sess.snapshot(), nil
}

func (s *Service) checkDetails(ctx context.Context, input *booking.BookInput) error {
	if err := booking.ValidateDetails(input); err != nil {
		return err
	}

	if err := s.bookings.EnsureAvailable(ctx, input.RoomID, input.Stay); err != nil {
		return err
	}

	return nil
}

func (s *Service) Back(id string) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next, err := sess.state.next(eventBack)
	if err != nil {
		return sess.snapshot(), err
	}

	sess.state = next
	sess.lastError = ""
	sess.updatedAt = s.now()

	return sess.snapshot(), nil
}

func (s *Service) SubmitPayment(ctx context.Context, id string, card payment.Card) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}

	return s.submitPayment(ctx, sess, card)
}

// submitPayment holds the session lock only around state changes. While the charge runs
// the session sits in Confirming, which rejects every transition, and Dismiss can cancel it.
func (s *Service) submitPayment(ctx context.Context, sess *session, card payment.Card) (Snapshot, error) {
	sess.mu.Lock()

	next, err := sess.state.next(eventSubmitPayment)
	if err != nil {
		snap := sess.snapshot()
		sess.mu.Unlock()

		return snap, err
	}

	if err = payment.Validate(card); err != nil {
		sess.lastError = err.Error()
		sess.updatedAt = s.now()
		snap := sess.snapshot()
		sess.mu.Unlock()

		return snap, err
	}

	chargeCtx, cancel := context.WithCancel(booking.NewContextWithIdempotencyKey(ctx, sess.idempotencyKey))
	defer cancel()

	sess.state = next
	sess.cancel = cancel
	sess.lastError = ""
	sess.updatedAt = s.now()
	input := *sess.details
	amount := sess.quote.TotalPrice
	sess.mu.Unlock()

	b, receipt, err := s.confirm(chargeCtx, &input, card, amount)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cancel = nil
	sess.updatedAt = s.now()

	// A booking written before the dismissal landed is reported, not hidden.
	if sess.dismissed && b == nil {
		return sess.snapshot(), ErrDismissed
	}

	if sess.dismissed {
		s.l.LogWarnf("Checkout session %v dismissed after booking %v was stored", sess.id, b.ID)
	}

	switch {
	case err == nil:
		sess.booking = b
		sess.receipt = receipt
		sess.state, _ = sess.state.next(eventConfirmed)
	case booking.IsAvailabilityError(err) != nil:
		sess.lastError = err.Error()
		sess.state, _ = sess.state.next(eventRoomTaken)
	default:
		sess.lastError = err.Error()
		sess.state, _ = sess.state.next(eventPaymentFailed)
	}

	return sess.snapshot(), err
}

func (s *Service) confirm(
	ctx context.Context,
	input *booking.BookInput,
	card payment.Card,
	amount int64,
) (*booking.Booking, *payment.Receipt, error) {
	receipt, err := s.payments.Charge(ctx, card, amount)
	if err != nil {
		return nil, nil, fmt.Errorf("charge card: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("after charge: %w", err)
	}

	b, err := s.bookings.CreateBooking(ctx, input)
	if err != nil {
		s.l.LogWarnf("Payment %v authorized but booking failed: %v", receipt.Reference, err.Error())

		return nil, nil, err
	}

	return b, receipt, nil
}

// Dismiss forgets the session and aborts a charge in flight.
func (s *Service) Dismiss(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.dismissed = true

	if sess.cancel != nil {
		sess.cancel()
		s.l.LogInfo("Checkout session %v dismissed while confirming, charge cancelled", sess.id)
	}

	return nil
}

// Book runs a transient session straight through details and payment.
// A repeated call with the same idempotency key returns the booking made by the first one.
func (s *Service) Book(ctx context.Context, input *booking.BookInput, card payment.Card) (Snapshot, error) {
	if err := booking.ValidateDetails(input); err != nil {
		return Snapshot{}, err
	}

	key, _ := booking.IdempotencyKeyFromContext(ctx)
	if key != "" {
		existing, err := s.bookings.BookingByIdempotencyKey(ctx, key)
		if err != nil && !errors.Is(err, booking.ErrRecordNotFound) {
			return Snapshot{}, fmt.Errorf("get booking by idempotency key: %w", err)
		}

		if existing != nil {
			return Snapshot{
				ID:        key,
				RoomID:    existing.RoomID,
				RoomName:  existing.RoomName,
				State:     StateDone,
				Booking:   existing,
				UpdatedAt: existing.CreatedAt,
			}, nil
		}
	}

	sess, err := s.newSession(ctx, input.RoomID)
	if err != nil {
		return Snapshot{}, err
	}

	if key != "" {
		sess.idempotencyKey = key
	}

	if snap, err := s.submitDetails(ctx, sess, input.Guest, input.Stay); err != nil {
		return snap, err
	}

	return s.submitPayment(ctx, sess, card)
}

// Evict drops sessions idle since before cutoff. Sessions that are confirming are kept.
func (s *Service) Evict(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted int

	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := sess.state != StateConfirming && sess.updatedAt.Before(cutoff)
		sess.mu.Unlock()

		if stale {
			delete(s.sessions, id)
			evicted++
		}
	}

	return evicted
}

func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
