package route

import (
	"errors"
	"log/slog"
	"net/http"

	"checkin/src-server/checkin"
	"checkin/src-server/metric"
	"checkin/src-server/utils"
)

type authReqBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// landing page right after login
func landing(isAdmin bool) string {
	if isAdmin {
		return "/admin/attendees"
	}
	return "/inside"
}

func Auth(muxer *http.ServeMux, as *utils.AppState) {
	// logout
	muxer.HandleFunc("DELETE /auth", WithState(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())
		if secret := sessionSecret(r); secret != "" {
			if err := as.Sessions.Delete(r.Context(), secret); err != nil {
				slog.Warn("can't delete session", "error", err)
			}
		}
		clearSessionCookie(w, state.secure)
		state.Session, state.User = nil, nil
		state.Notify(KindInfo, "You have been logged out")
		writeJSON(w, state, http.StatusOK, nil)
	}))

	// login
	muxer.HandleFunc("POST /auth", WithState(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())

		var reqBody authReqBody
		if err := decodeJSON(w, r, &reqBody); err != nil {
			badRequest(w, state, "Invalid request body")
			return
		}

		user, err := as.Engine.Authenticate(r.Context(), reqBody.Email, reqBody.Password)
		switch {
		case errors.Is(err, checkin.ErrValidation), errors.Is(err, checkin.ErrInvalidCredentials):
			metric.Logins.WithLabelValues("failure").Inc()
			state.Notify(KindError, "Wrong email or password")
			redirect(w, r, state, "/")
			return
		case err != nil:
			writeError(w, state, "can't authenticate", err)
			return
		}

		sessionModel, err := as.Sessions.Create(r.Context(), user.ID)
		if err != nil {
			writeError(w, state, "can't create session", err)
			return
		}
		metric.Logins.WithLabelValues("success").Inc()

		setSessionCookie(w, state.secure, sessionModel.Secret)
		state.Notify(KindSuccess, "Logged in as "+user.Email)
		redirect(w, r, state, landing(user.IsAdmin))
	}))
}
