package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *mux.Router) {
	r.Use(s.recoverMiddleware(), s.traceMiddleware(), s.loggerMiddleware())

	r.HandleFunc(s.conf.LivenessEndpoint, s.livenessHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/rooms/v1", s.listRoomsHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms/v1/{id}", s.getRoomHandler).Methods(http.MethodGet)
	api.HandleFunc("/rooms/v1/{id}/availability", s.roomAvailabilityHandler).Methods(http.MethodGet)

	api.HandleFunc("/bookings/v1", s.listBookingsHandler).Methods(http.MethodGet)
	api.HandleFunc("/bookings/v1", s.createBookingHandler).Methods(http.MethodPost)
	api.HandleFunc("/bookings/v1/{id}", s.getBookingHandler).Methods(http.MethodGet)
	api.HandleFunc("/bookings/v1/{id}/cancel", s.cancelBookingHandler).Methods(http.MethodPost)

	api.HandleFunc("/checkouts/v1", s.startCheckoutHandler).Methods(http.MethodPost)
	api.HandleFunc("/checkouts/v1/{id}", s.getCheckoutHandler).Methods(http.MethodGet)
	api.HandleFunc("/checkouts/v1/{id}", s.dismissCheckoutHandler).Methods(http.MethodDelete)
	api.HandleFunc("/checkouts/v1/{id}/details", s.checkoutDetailsHandler).Methods(http.MethodPost)
	api.HandleFunc("/checkouts/v1/{id}/back", s.checkoutBackHandler).Methods(http.MethodPost)
	api.HandleFunc("/checkouts/v1/{id}/payment", s.checkoutPaymentHandler).Methods(http.MethodPost)
}
