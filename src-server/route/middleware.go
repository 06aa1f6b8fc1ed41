package route

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"checkin/src-server/checkin"
	"checkin/src-server/metric"
	"checkin/src-server/model"
	"checkin/src-server/session"
	"checkin/src-server/utils"
)

type StateCtxKeyType string

const (
	StateCtxKey             StateCtxKeyType = "state"
	SessionSecretCookieName string          = "session-secret"
)

// RequestState carries everything a handler needs to know about the caller
// for the lifetime of one request.
type RequestState struct {
	Session *model.Session
	User    *model.User
	// pending notices: the ones read from the flash cookie plus the ones
	// added while handling this request
	Notices []Notice

	secure   bool
	hadFlash bool
}

func (s *RequestState) Notify(kind Kind, message string) {
	s.Notices = append(s.Notices, Notice{Kind: kind, Message: message})
}

func (s *RequestState) Authenticated() bool {
	return s.User != nil
}

// StateFromContext never returns nil; handlers outside WithState get an
// anonymous state.
func StateFromContext(ctx context.Context) *RequestState {
	if state, ok := ctx.Value(StateCtxKey).(*RequestState); ok {
		return state
	}
	return &RequestState{}
}

func setSessionCookie(w http.ResponseWriter, secure bool, secret string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionSecretCookieName,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionSecretCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func sessionSecret(r *http.Request) string {
	sessionCookie, err := r.Cookie(SessionSecretCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(sessionCookie.Value)
}

// WithState resolves the session cookie and the flash cookie into a
// RequestState. A missing or expired session leaves the state anonymous.
func WithState(as *utils.AppState, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := &RequestState{secure: !as.Config.GetDev()}
		state.Notices, state.hadFlash = readFlash(r)

		if secret := sessionSecret(r); secret != "" {
			sessionModel, err := as.Sessions.Get(r.Context(), secret)
			switch {
			case errors.Is(err, session.ErrExpired):
				clearSessionCookie(w, state.secure)
				state.Notify(KindInfo, "Session expired, please log in again")
			case errors.Is(err, session.ErrNotFound):
				clearSessionCookie(w, state.secure)
			case err != nil:
				slog.Error("can't resolve session", "error", err)
				writeJSON(w, state, http.StatusInternalServerError, nil, Notice{Kind: KindError, Message: genericStoreMessage})
				return
			default:
				user, err := as.Engine.UserByID(r.Context(), sessionModel.UserID)
				switch {
				case errors.Is(err, checkin.ErrNotFound):
					// the account is gone; the session is worthless
					if err := as.Sessions.Delete(r.Context(), secret); err != nil {
						slog.Warn("can't delete orphaned session", "error", err)
					}
					clearSessionCookie(w, state.secure)
				case err != nil:
					slog.Error("can't load session user", "error", err)
					writeJSON(w, state, http.StatusInternalServerError, nil, Notice{Kind: KindError, Message: genericStoreMessage})
					return
				default:
					state.Session = sessionModel
					state.User = user
				}
			}
		}

		ctx := context.WithValue(r.Context(), StateCtxKey, state)
		next(w, r.WithContext(ctx))
	}
}

// AuthMiddleware sends anonymous callers back to the home page.
func AuthMiddleware(as *utils.AppState, next http.HandlerFunc) http.HandlerFunc {
	return WithState(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())
		if !state.Authenticated() {
			state.Notify(KindError, "Please log in first")
			redirect(w, r, state, "/")
			return
		}
		next(w, r)
	})
}

// AdminMiddleware additionally requires the admin capability; staff are sent
// to their landing page.
func AdminMiddleware(as *utils.AppState, next http.HandlerFunc) http.HandlerFunc {
	return AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())
		if !state.User.IsAdmin {
			state.Notify(KindError, "Only admins can do that")
			redirect(w, r, state, "/inside")
			return
		}
		next(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// LoggingMiddleware must wrap the ServeMux itself so r.Pattern is filled in
// by the time the handler returns.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		metric.HTTPRequestDuration.
			WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).
			Observe(elapsed.Seconds())

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
