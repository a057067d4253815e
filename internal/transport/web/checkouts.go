package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/payment"
)

type startCheckoutRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type detailsRequest struct {
	Guest booking.Guest `json:"guest"`
	Stay  booking.Stay  `json:"stay"`
}

func (s *Server) startCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var req startCheckoutRequest

	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	snap, err := s.checkouts.Start(r.Context(), req.RoomID)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) getCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.checkouts.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) checkoutDetailsHandler(w http.ResponseWriter, r *http.Request) {
	var req detailsRequest

	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	snap, err := s.checkouts.SubmitDetails(r.Context(), mux.Vars(r)["id"], req.Guest, req.Stay)
	if err != nil {
		s.writeCheckoutError(w, r, err, snap)

		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) checkoutBackHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.checkouts.Back(mux.Vars(r)["id"])
	if err != nil {
		s.writeCheckoutError(w, r, err, snap)

		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

// checkoutPaymentHandler blocks for the simulated charge. A client that goes away cancels it.
func (s *Server) checkoutPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var card payment.Card

	if err := s.decode(r, &card); err != nil {
		s.writeError(w, r, err)

		return
	}

	snap, err := s.checkouts.SubmitPayment(r.Context(), mux.Vars(r)["id"], card)
	if err != nil {
		s.writeCheckoutError(w, r, err, snap)

		return
	}

	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) dismissCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.checkouts.Dismiss(mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusNoContent, nil)
}
