package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound      = errors.New("checkout session not found")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrDismissed            = errors.New("checkout session dismissed")
)

type State string

const (
	StateCollectingDetails State = "CollectingDetails"
	StateCollectingPayment State = "CollectingPayment"
	StateConfirming        State = "Confirming"
	StateDone              State = "Done"
)

type event string

const (
	eventSubmitDetails event = "submitDetails"
	eventBack          event = "back"
	eventSubmitPayment event = "submitPayment"
	eventConfirmed     event = "confirmed"
	eventPaymentFailed event = "paymentFailed"
	eventRoomTaken     event = "roomTaken"
)

// transitions is the whole machine. Dismiss is not an event: it is allowed everywhere
// and removes the session instead of moving it.
var transitions = map[State]map[event]State{
	StateCollectingDetails: {
		eventSubmitDetails: StateCollectingPayment,
	},
	StateCollectingPayment: {
		eventBack:          StateCollectingDetails,
		eventSubmitPayment: StateConfirming,
	},
	StateConfirming: {
		eventConfirmed:     StateDone,
		eventPaymentFailed: StateCollectingPayment,
		eventRoomTaken:     StateCollectingDetails,
	},
	StateDone: {},
}

func (s State) next(e event) (State, error) {
	to, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%s in state %s: %w", e, s, ErrTransitionNotAllowed)
	}

	return to, nil
}
