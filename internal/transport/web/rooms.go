package web

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/catalog"
)

type roomsQuery struct {
	Category string `query:"category"`
	MaxPrice string `query:"maxPrice" validate:"omitempty,number"`
}

type availabilityQuery struct {
	CheckIn  string `query:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut string `query:"checkOut" validate:"required,datetime=2006-01-02"`
}

type availabilityResponse struct {
	RoomID    string         `json:"roomId"`
	CheckIn   booking.Date   `json:"checkIn"`
	CheckOut  booking.Date   `json:"checkOut"`
	Available bool           `json:"available"`
	Quote     *booking.Quote `json:"quote,omitempty"`
}

func (s *Server) roomsFilter(r *http.Request) (catalog.Filter, error) {
	q := roomsQuery{
		Category: r.URL.Query().Get("category"),
		MaxPrice: r.URL.Query().Get("maxPrice"),
	}

	if err := s.validate.Struct(q); err != nil {
		return catalog.Filter{}, err
	}

	category, err := catalog.ParseCategory(q.Category)
	if err != nil {
		return catalog.Filter{}, err
	}

	var maxPrice int64

	if q.MaxPrice != "" {
		if maxPrice, err = strconv.ParseInt(q.MaxPrice, 10, 64); err != nil {
			return catalog.Filter{}, errBadRequest
		}
	}

	return catalog.Filter{Category: category, MaxPrice: maxPrice}, nil
}

func (s *Server) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	f, err := s.roomsFilter(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, s.rooms.Rooms(f))
}

func (s *Server) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Room(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	s.writeJSON(w, http.StatusOK, room)
}

func (s *Server) parseStay(r *http.Request) (booking.Stay, error) {
	q := availabilityQuery{
		CheckIn:  r.URL.Query().Get("checkIn"),
		CheckOut: r.URL.Query().Get("checkOut"),
	}

	if err := s.validate.Struct(q); err != nil {
		return booking.Stay{}, err
	}

	checkIn, err := booking.ParseDate(q.CheckIn)
	if err != nil {
		return booking.Stay{}, err
	}

	checkOut, err := booking.ParseDate(q.CheckOut)
	if err != nil {
		return booking.Stay{}, err
	}

	return booking.Stay{CheckIn: checkIn, CheckOut: checkOut}, nil
}

func (s *Server) roomAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	stay, err := s.parseStay(r)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	available, err := s.bookings.IsRoomAvailable(r.Context(), roomID, stay)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	resp := availabilityResponse{
		RoomID:    roomID,
		CheckIn:   stay.CheckIn,
		CheckOut:  stay.CheckOut,
		Available: available,
	}

	if available {
		if resp.Quote, err = s.bookings.Quote(roomID, stay); err != nil {
			s.writeError(w, r, err)

			return
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}
