package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/avstrong/luxestay/internal/logger"
)

const (
	DefaultDelay  = 2 * time.Second
	minCardDigits = 16
	minCVVDigits  = 3
)

var ErrDeclined = errors.New("payment declined")

type Card struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// ValidationError lists the card fields that failed the checks.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payment details: %v", strings.Join(e.Fields, ", "))
}

func IsValidationError(err error) *ValidationError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}

	return nil
}

type Receipt struct {
	Reference    string    `json:"reference"`
	Amount       int64     `json:"amount"`
	CardLast4    string    `json:"cardLast4"`
	AuthorizedAt time.Time `json:"authorizedAt"`
}

type Conf struct {
	L     *logger.Logger
	Delay time.Duration
}

// Simulator pretends to authorize a card. Nothing is charged anywhere.
type Simulator struct {
	l     *logger.Logger
	delay time.Duration
	now   func() time.Time
	seq   atomic.Int64
}

func New(conf Conf) *Simulator {
	l := conf.L
	if l == nil {
		l = logger.Discard()
	}

	//nolint:exhaustruct
	return &Simulator{
		l:     l,
		delay: conf.Delay,
		now:   time.Now,
	}
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}

		return -1
	}, s)
}

// Normalize strips everything but digits from number and CVV, as the card form does.
func (c Card) Normalize() Card {
	return Card{
		Number: digits(c.Number),
		Expiry: strings.TrimSpace(c.Expiry),
		CVV:    digits(c.CVV),
	}
}

func (c Card) Last4() string {
	n := digits(c.Number)
	if len(n) < 4 { //nolint:gomnd
		return n
	}

	return n[len(n)-4:]
}

func Validate(card Card) error {
	c := card.Normalize()

	var fields []string

	if len(c.Number) < minCardDigits {
		fields = append(fields, "cardNumber")
	}

	if c.Expiry == "" {
		fields = append(fields, "expiry")
	}

	if len(c.CVV) < minCVVDigits {
		fields = append(fields, "cvv")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

// Charge validates the card, then waits out the configured delay.
// It stops early with ctx.Err() when ctx is done first.
func (s *Simulator) Charge(ctx context.Context, card Card, amount int64) (*Receipt, error) {
	if err := Validate(card); err != nil {
		return nil, err
	}

	if amount <= 0 {
		return nil, fmt.Errorf("amount %d: %w", amount, ErrDeclined)
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			s.l.LogInfo("Simulated payment of %v aborted: %v", amount, ctx.Err())

			return nil, fmt.Errorf("simulated payment: %w", ctx.Err())
		case <-timer.C:
		}
	}

	n := s.seq.Add(1)

	receipt := &Receipt{
		Reference:    fmt.Sprintf("SIM-%06d", n),
		Amount:       amount,
		CardLast4:    card.Last4(),
		AuthorizedAt: s.now().UTC(),
	}

	s.l.LogInfo("Simulated payment %v authorized for %v", receipt.Reference, amount)

	return receipt, nil
}
