package controllers

import (
	"context"
	"errors"
	"net/http"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/remote"
	"jobdeck/internal/services"
	"jobdeck/internal/state"
	"jobdeck/internal/storage"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// badRequest is a malformed or invalid request body. It prints as the bare message.
type badRequest string

func (e badRequest) Error() string { return string(e) }

// base carries what every controller needs to resolve a profile and answer with the
// standard envelope.
type base struct {
	logger   providers.Logger
	profiles services.ProfileServiceInterface
}

func (b *base) profile(w http.ResponseWriter, r *http.Request) (*services.Profile, bool) {
	p, err := b.profiles.Open(r.URL.Query().Get("profile"))
	if err != nil {
		b.fail(w, r, err)
		return nil, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, resp models.ApiResponse) {
	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func ok(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, models.ApiResponse{Success: true, Data: data})
}

func okMessage(w http.ResponseWriter, status int, data interface{}, message string) {
	writeJSON(w, status, models.ApiResponse{Success: true, Data: data, Message: message})
}

// decode reads a JSON body of at most maxRequestBodySize into dst.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("Invalid JSON body")
	}
	return nil
}

// check runs the struct's validate tags and reports the first failure.
func check(dst interface{}) error {
	v := validate.Struct(dst)
	if !v.Validate() {
		return badRequest(v.Errors.One())
	}
	return nil
}

func statusFor(err error) int {
	if apiErr, ok := remote.AsAPIError(err); ok {
		switch apiErr.Kind {
		case remote.KindUnauthorized:
			return http.StatusUnauthorized
		case remote.KindForbidden:
			return http.StatusForbidden
		case remote.KindRateLimited:
			return http.StatusTooManyRequests
		case remote.KindGeneric:
			if apiErr.Status >= 400 && apiErr.Status < 500 {
				return apiErr.Status
			}
		}
		return http.StatusBadGateway
	}

	var bad badRequest
	switch {
	case errors.As(err, &bad),
		errors.Is(err, state.ErrRecordRequired),
		errors.Is(err, state.ErrInvalidID),
		errors.Is(err, state.ErrInvalidName),
		errors.Is(err, storage.ErrInvalidProfile),
		errors.Is(err, models.ErrInvalidJob),
		errors.Is(err, remote.ErrValidation),
		errors.Is(err, remote.ErrSelfTarget):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrCapacityExceeded),
		errors.Is(err, services.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, state.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAdminRequired):
		return http.StatusForbidden
	case errors.Is(err, remote.ErrNotConfigured),
		errors.Is(err, services.ErrServiceClosed),
		errors.Is(err, storage.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with the envelope for err. Unexpected errors are logged and hidden.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if apiErr, ok := remote.AsAPIError(err); ok {
		message = apiErr.Message
	}
	if status == http.StatusInternalServerError {
		b.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		message = "Internal Server Error"
	}
	writeJSON(w, status, models.ApiResponse{Success: false, Error: message})
}
