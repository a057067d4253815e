package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/catalog"
	"github.com/avstrong/luxestay/internal/checkout"
	"github.com/avstrong/luxestay/internal/idgen/simple"
	"github.com/avstrong/luxestay/internal/logger"
	"github.com/avstrong/luxestay/internal/payment"
	"github.com/avstrong/luxestay/internal/storage/memory"
)

const cardJSON = `{"cardNumber":"4242 4242 4242 4242","expiry":"12/29","cvv":"123"}`

type testServer struct {
	h       http.Handler
	manager *booking.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tracer := noop.NewTracerProvider().Tracer("test")
	rooms := catalog.Default()
	db := memory.New(memory.Config{})
	manager := booking.New(logger.Discard(), db, rooms, simple.New("bk-"), tracer)
	checkouts := checkout.New(checkout.Conf{}, rooms, manager, payment.New(payment.Conf{}), simple.New("co-"))

	srv, err := New(context.Background(), Conf{
		L:                logger.Discard(),
		Addr:             "localhost:0",
		LivenessEndpoint: "/liveness",
		AllowedOrigins:   []string{"*"},
	}, rooms, manager, checkouts, tracer)
	require.NoError(t, err)

	return &testServer{h: srv.Handler(), manager: manager}
}

func (ts *testServer) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func bookBody(roomID, checkIn, checkOut string) string {
	return `{"roomId":"` + roomID + `","guest":{"name":"Ana","email":"ana@example.com"},` +
		`"stay":{"checkIn":"` + checkIn + `","checkOut":"` + checkOut + `"},"payment":` + cardJSON + `}`
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := newTestServer(t).do(t, http.MethodGet, "/liveness", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestListRooms(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/rooms/v1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]catalog.Room](t, rec), 6)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1?category=suite&maxPrice=500", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rooms := decodeBody[[]catalog.Room](t, rec)
	require.Len(t, rooms, 1)
	assert.Equal(t, "6", rooms[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1?category=penthouse", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1?maxPrice=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRoom(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/rooms/v1/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", decodeBody[catalog.Room](t, rec).ID)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoomAvailability(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/rooms/v1/1/availability?checkIn=2024-06-01&checkOut=2024-06-04", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[availabilityResponse](t, rec)
	assert.True(t, resp.Available)
	require.NotNil(t, resp.Quote)
	assert.Equal(t, int64(360), resp.Quote.TotalPrice)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("1", "2024-06-01", "2024-06-04"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1/1/availability?checkIn=2024-06-03&checkOut=2024-06-05", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[availabilityResponse](t, rec).Available)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1/1/availability?checkIn=2024-06-04&checkOut=2024-06-05", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[availabilityResponse](t, rec).Available)

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1/1/availability?checkIn=06/03/2024", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Fields, "checkOut")

	rec = ts.do(t, http.MethodGet, "/api/rooms/v1/1/availability?checkIn=2024-06-05&checkOut=2024-06-05", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBooking(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("1", "2024-06-01", "2024-06-04"), "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody[bookResponse](t, rec)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, int64(360), resp.Booking.TotalPrice)
	assert.Equal(t, booking.StatusConfirmed, resp.Booking.Status)
	require.NotNil(t, resp.Receipt)
	assert.Equal(t, "4242", resp.Receipt.CardLast4)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("1", "2024-06-01", "2024-06-04"), "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, resp.Booking.ID, decodeBody[bookResponse](t, rec).Booking.ID)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("1", "2024-06-03", "2024-06-06"))
	require.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.NotEmpty(t, decodeBody[errorResponse](t, rec).Detail)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("1", "2024-06-04", "2024-06-06"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings/v1", `{"roomId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("", "2024-06-01", "2024-06-04"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Fields, "roomId")

	body := `{"roomId":"1","guest":{"name":"","email":"x"},"stay":{"checkIn":"2024-06-04","checkOut":"2024-06-01"},` +
		`"payment":` + cardJSON + `}`
	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := decodeBody[errorResponse](t, rec).Fields
	assert.Contains(t, fields, "guest.name")
	assert.Contains(t, fields, "guest.email")
	assert.Contains(t, fields, "stay.checkOut")

	body = `{"roomId":"1","guest":{"name":"Ana","email":"ana@example.com"},` +
		`"stay":{"checkIn":"2024-06-01","checkOut":"2024-06-04"},"payment":{"cardNumber":"1234"}}`
	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", body)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("42", "2024-06-01", "2024-06-04"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("1", "June 1st", "2024-06-04"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAndCancelBookings(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("2", "2024-07-01", "2024-07-05"))
	require.Equal(t, http.StatusCreated, rec.Code)

	id := decodeBody[bookResponse](t, rec).Booking.ID

	rec = ts.do(t, http.MethodGet, "/api/bookings/v1/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1/"+id+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, booking.StatusCancelled, decodeBody[booking.Booking](t, rec).Status)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1/"+id+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1/missing/cancel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/bookings/v1", bookBody("2", "2024-07-03", "2024-07-06"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/bookings/v1?status=Cancelled", "")
	require.Equal(t, http.StatusOK, rec.Code)

	cancelled := decodeBody[[]booking.Booking](t, rec)
	require.Len(t, cancelled, 1)
	assert.Equal(t, id, cancelled[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/bookings/v1?email=ANA@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]booking.Booking](t, rec), 2)

	rec = ts.do(t, http.MethodGet, "/api/bookings/v1?status=Pending", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/checkouts/v1", `{"roomId":"1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	snap := decodeBody[checkout.Snapshot](t, rec)
	assert.Equal(t, checkout.StateCollectingDetails, snap.State)

	base := "/api/checkouts/v1/" + snap.ID

	rec = ts.do(t, http.MethodPost, base+"/payment", cardJSON)
	require.Equal(t, http.StatusConflict, rec.Code)

	details := `{"guest":{"name":"Ana","email":"ana@example.com"},"stay":{"checkIn":"2024-06-01","checkOut":"2024-06-04"}}`

	rec = ts.do(t, http.MethodPost, base+"/details", details)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(360), decodeBody[checkout.Snapshot](t, rec).Quote.TotalPrice)

	rec = ts.do(t, http.MethodPost, base+"/back", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, checkout.StateCollectingDetails, decodeBody[checkout.Snapshot](t, rec).State)

	rec = ts.do(t, http.MethodPost, base+"/details", details)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, base+"/payment", `{"cardNumber":"1","expiry":"","cvv":""}`)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	failed := decodeBody[checkoutErrorResponse](t, rec)
	require.NotNil(t, failed.Session)
	assert.Equal(t, checkout.StateCollectingPayment, failed.Session.State)

	rec = ts.do(t, http.MethodPost, base+"/payment", cardJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	done := decodeBody[checkout.Snapshot](t, rec)
	assert.Equal(t, checkout.StateDone, done.State)
	require.NotNil(t, done.Booking)

	rec = ts.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	b, err := ts.manager.GetBooking(context.Background(), done.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
}

func TestCheckoutRejectsUnknownRoom(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/checkouts/v1", `{"roomId":"42"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/checkouts/v1", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorResponse](t, rec).Fields, "roomId")
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/bookings/v1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	ts.h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	t.Parallel()

	s := &Server{l: logger.Discard()}
	h := s.recoverMiddleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
