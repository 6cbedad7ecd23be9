package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/logiops360/logiops-cli/internal/anomaly"
	"github.com/logiops360/logiops-cli/internal/model"
	"github.com/logiops360/logiops-cli/internal/predict"
	"github.com/logiops360/logiops-cli/internal/session"
	"github.com/logiops360/logiops-cli/pkg/logiops"
)

// errBadRequest marks input rejected by a handler before any call.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(err error) error {
	return errBadRequest{msg: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		zap.L().Warn("api: upstream failure", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// classify maps an error to a status and the message shown to the caller.
// Upstream API errors keep their status; transport failures become 502.
func classify(err error) (int, string) {
	var (
		bad     errBadRequest
		profile *model.InvalidProfileError
		apiErr  *logiops.APIError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, bad.msg
	case errors.Is(err, session.ErrMissingFields), predict.IsValidation(err):
		return http.StatusBadRequest, rootMessage(err)
	case errors.As(err, &profile):
		return http.StatusBadRequest, profile.Error()
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, rootMessage(err)
	case errors.Is(err, anomaly.ErrUnknownShipment):
		return http.StatusNotFound, rootMessage(err)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return status, apiErr.Error()
	default:
		return http.StatusBadGateway, logiops.UserMessage(err)
	}
}

// rootMessage strips wrap context from sentinel errors.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest{msg: "invalid request body"}
	}
	return nil
}
