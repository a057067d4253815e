package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/catalog"
	"github.com/avstrong/luxestay/internal/checkout"
	"github.com/avstrong/luxestay/internal/logger"
	"github.com/avstrong/luxestay/internal/payment"
)

type roomCatalog interface {
	Rooms(f catalog.Filter) []catalog.Room
	Room(id string) (catalog.Room, error)
}

type bookingService interface {
	IsRoomAvailable(ctx context.Context, roomID string, stay booking.Stay) (bool, error)
	Quote(roomID string, stay booking.Stay) (*booking.Quote, error)
	ListBookings(ctx context.Context, f booking.ListFilter) ([]booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id string) (*booking.Booking, error)
}

type checkoutService interface {
	Start(ctx context.Context, roomID string) (checkout.Snapshot, error)
	Get(id string) (checkout.Snapshot, error)
	SubmitDetails(ctx context.Context, id string, guest booking.Guest, stay booking.Stay) (checkout.Snapshot, error)
	Back(id string) (checkout.Snapshot, error)
	SubmitPayment(ctx context.Context, id string, card payment.Card) (checkout.Snapshot, error)
	Dismiss(id string) error
	Book(ctx context.Context, input *booking.BookInput, card payment.Card) (checkout.Snapshot, error)
}

type Server struct {
	srv       *http.Server
	router    *mux.Router
	l         *logger.Logger
	conf      Conf
	rooms     roomCatalog
	bookings  bookingService
	checkouts checkoutService
	tracer    trace.Tracer
	validate  *validator.Validate
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Addr              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
	AllowedOrigins    []string
}

func New(
	ctx context.Context,
	conf Conf,
	rooms roomCatalog,
	bookings bookingService,
	checkouts checkoutService,
	tracer trace.Tracer,
) (*Server, error) {
	router := mux.NewRouter()

	server := &Server{
		router:    router,
		l:         conf.L,
		conf:      conf,
		rooms:     rooms,
		bookings:  bookings,
		checkouts: checkouts,
		tracer:    tracer,
		validate:  newValidator(),
	}

	server.addRoutes(router)

	cors := handlers.CORS(
		handlers.AllowedOrigins(conf.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Idempotency-Key"}),
	)

	//nolint:exhaustruct
	server.srv = &http.Server{
		Addr:              conf.Addr,
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           cors(router),
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler is the full handler chain, CORS included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
