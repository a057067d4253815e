package booking

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrIdempotencyKey  = errors.New("idempotency key already used")
	ErrNextID          = errors.New("get next id from generator")
	ErrRecordNotFound  = errors.New("record not found")
	ErrInvalidDate     = errors.New("invalid date")
	ErrCorruptedData   = errors.New("stored bookings are corrupted")
	ErrInvalidStatus   = errors.New("invalid booking status")
	ErrRoomUnavailable = errors.New("room is unavailable")
)

type AvailabilityError struct {
	errors []string
}

func NewAvailabilityError() *AvailabilityError {
	//nolint:exhaustruct
	return &AvailabilityError{}
}

func IsAvailabilityError(err error) *AvailabilityError {
	if err == nil {
		return nil
	}

	var availabilityError *AvailabilityError

	if errors.As(err, &availabilityError) {
		return availabilityError
	}

	return nil
}

func (e *AvailabilityError) AddUnavailableRoom(roomID string, requested Stay, conflicts []Stay) {
	e.errors = append(e.errors, fmt.Sprintf(
		"room '%v' is unavailable from %v to %v, already booked for %v",
		roomID,
		requested.CheckIn,
		requested.CheckOut,
		formatStays(conflicts),
	))
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("%+v", e.errors)
}

func (e *AvailabilityError) Fields() []string {
	return e.errors
}

func (e *AvailabilityError) UnavailableRoomsCount() int {
	return len(e.errors)
}

func (e *AvailabilityError) Unwrap() error {
	return ErrRoomUnavailable
}

type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{
		fields: make(map[string][]string),
	}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}

	var inputError *InputError

	if errors.As(err, &inputError) {
		return inputError
	}

	return nil
}

func (ie *InputError) fieldsCount() int {
	return len(ie.fields)
}

func (ie *InputError) addError(field, msg string) {
	ie.fields[field] = append(ie.fields[field], msg)
}

func (ie *InputError) Error() string {
	return fmt.Sprintf("%+v", ie.fields)
}

func (ie *InputError) Fields() map[string][]string {
	return ie.fields
}

// FieldNames is sorted.
func (ie *InputError) FieldNames() []string {
	names := make([]string, 0, len(ie.fields))
	for name := range ie.fields {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func formatStays(stays []Stay) string {
	out := make([]string, 0, len(stays))
	for _, s := range stays {
		out = append(out, s.CheckIn.String()+".."+s.CheckOut.String())
	}

	return fmt.Sprintf("%v", out)
}
