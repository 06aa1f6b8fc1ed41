package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"checkin/src-server/checkin"
)

const genericStoreMessage = "Database error, try again"

const maxBodyBytes = 1 << 20

type envelope struct {
	Data    any      `json:"data"`
	Notices []Notice `json:"notices"`
}

// writeJSON delivers every pending notice in the body, so the flash cookie
// is spent.
func writeJSON(w http.ResponseWriter, state *RequestState, status int, data any, extra ...Notice) {
	notices := normalizeNotices(append(state.Notices, extra...))
	state.Notices = nil
	if state.hadFlash {
		clearFlash(w, state.secure)
		state.hadFlash = false
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data, Notices: notices}); err != nil {
		slog.Warn("can't write response", "error", err)
	}
}

// redirect carries pending notices over to the next page via the flash
// cookie.
func redirect(w http.ResponseWriter, r *http.Request, state *RequestState, url string) {
	writeFlash(w, state.secure, state.Notices)
	state.Notices = nil
	state.hadFlash = false
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func badRequest(w http.ResponseWriter, state *RequestState, message string) {
	writeJSON(w, state, http.StatusBadRequest, nil, Notice{Kind: KindError, Message: message})
}

// writeError maps engine errors onto status codes. Store failures are logged
// with their detail and reported with a generic message.
func writeError(w http.ResponseWriter, state *RequestState, op string, err error) {
	var (
		status  int
		message string
	)
	switch {
	case errors.Is(err, checkin.ErrValidation):
		status, message = http.StatusBadRequest, "Missing or invalid input"
	case errors.Is(err, checkin.ErrCodeNotFound):
		status, message = http.StatusNotFound, "Code not found"
	case errors.Is(err, checkin.ErrAttendeeNotFound):
		status, message = http.StatusNotFound, "Attendee not found"
	case errors.Is(err, checkin.ErrStatusNotFound):
		status, message = http.StatusNotFound, "Unknown status"
	case errors.Is(err, checkin.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, checkin.ErrIntegrity):
		status, message = http.StatusConflict, "Conflicting record, try again"
	default:
		slog.Error(op, "error", err)
		status, message = http.StatusInternalServerError, genericStoreMessage
	}
	writeJSON(w, state, status, nil, Notice{Kind: KindError, Message: message})
}
