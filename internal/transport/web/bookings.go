package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/payment"
)

type bookingsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=Confirmed Cancelled"`
	Email  string `query:"email" validate:"omitempty,email"`
}

type bookRequest struct {
	RoomID  string        `json:"roomId" validate:"required"`
	Guest   booking.Guest `json:"guest"`
	Stay    booking.Stay  `json:"stay"`
	Payment payment.Card  `json:"payment"`
}

type bookResponse struct {
	Booking *booking.Booking `json:"booking"`
	Receipt *payment.Receipt `json:"receipt,omitempty"`
}

func (s *Server) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	q := bookingsQuery{
		Status: r.URL.Query().Get("status"),
		Email:  r.URL.Query().Get("email"),
	}

	if err := s.validate.Struct(q); err != nil {
		s.writeError(w, r, err)

		return
	}

	out, err := s.bookings.ListBookings(r.Context(), booking.ListFilter{
		Status:     booking.Status(q.Status),
		GuestEmail: q.Email,
	})
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, b)
}

// createBookingHandler books in one request. An Idempotency-Key header makes retries safe.
func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var req bookRequest

	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	ctx := r.Context()
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		ctx = booking.NewContextWithIdempotencyKey(ctx, key)
	}

	input := &booking.BookInput{RoomID: req.RoomID, Guest: req.Guest, Stay: req.Stay}

	snap, err := s.checkouts.Book(ctx, input, req.Payment)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, bookResponse{Booking: snap.Booking, Receipt: snap.Receipt})
}

func (s *Server) cancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.CancelBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, b)
}
