package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/avstrong/luxestay/internal/booking"
	"github.com/avstrong/luxestay/internal/catalog"
	"github.com/avstrong/luxestay/internal/checkout"
	"github.com/avstrong/luxestay/internal/payment"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
	Detail []string            `json:"details,omitempty"`
}

type checkoutErrorResponse struct {
	errorResponse
	Session *checkout.Snapshot `json:"session,omitempty"`
}

// newValidator reports fields under their json or query names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0] //nolint:gomnd
			if name == "-" {
				return ""
			}

			if name != "" {
				return name
			}
		}

		return fld.Name
	})

	return v
}

func validationFields(err error) map[string][]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fields := make(map[string][]string, len(validationErrs))

	for _, fe := range validationErrs {
		name := strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
		fields[name] = append(fields[name], "failed "+fe.Tag()+" check")
	}

	return fields
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

// errorStatus maps a domain error onto its response code and body.
func errorStatus(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	if inputErr := booking.IsInputError(err); inputErr != nil {
		resp.Fields = inputErr.Fields()

		return http.StatusBadRequest, resp
	}

	if fields := validationFields(err); fields != nil {
		resp.Error = "invalid request"
		resp.Fields = fields

		return http.StatusBadRequest, resp
	}

	if availabilityErr := booking.IsAvailabilityError(err); availabilityErr != nil {
		resp.Detail = availabilityErr.Fields()

		return http.StatusPreconditionFailed, resp
	}

	if validationErr := payment.IsValidationError(err); validationErr != nil {
		resp.Detail = validationErr.Fields

		return http.StatusPaymentRequired, resp
	}

	switch {
	case errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrInvalidStatus),
		errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, resp
	case errors.Is(err, catalog.ErrRoomNotFound),
		errors.Is(err, booking.ErrRecordNotFound),
		errors.Is(err, checkout.ErrSessionNotFound):
		return http.StatusNotFound, resp
	case errors.Is(err, checkout.ErrTransitionNotAllowed),
		errors.Is(err, checkout.ErrDismissed):
		return http.StatusConflict, resp
	case errors.Is(err, payment.ErrDeclined):
		return http.StatusPaymentRequired, resp
	default:
		return http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.l.LogErrorf("%s %s failed: %v", r.Method, r.URL.Path, err.Error())
	}

	s.writeJSON(w, status, resp)
}

// writeCheckoutError also returns the session, so the client can render the step it landed on.
func (s *Server) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error, snap checkout.Snapshot) {
	status, resp := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.l.LogErrorf("%s %s failed: %v", r.Method, r.URL.Path, err.Error())
	}

	out := checkoutErrorResponse{errorResponse: resp}
	if snap.ID != "" {
		out.Session = &snap
	}

	s.writeJSON(w, status, out)
}

func (s *Server) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}

	return s.validate.Struct(dst)
}
