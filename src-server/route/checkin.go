package route

import (
	"errors"
	"net/http"

	"checkin/src-server/checkin"
	"checkin/src-server/metric"
	"checkin/src-server/utils"
)

func Checkin(muxer *http.ServeMux, as *utils.AppState) {
	// lookup
	muxer.HandleFunc("GET /codes/{code}", AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())

		view, err := as.Engine.Lookup(r.Context(), r.PathValue("code"))
		if err != nil {
			if errors.Is(err, checkin.ErrCodeNotFound) {
				metric.CodeLookups.WithLabelValues("not_found").Inc()
			}
			writeError(w, state, "can't look up code", err)
			return
		}
		metric.CodeLookups.WithLabelValues("found").Inc()

		switch view.Passed() {
		case true:
			state.Notify(KindPassed, view.FullName()+" has already passed")
		case false:
			state.Notify(KindNotPassed, view.FullName()+" has not passed yet")
		}
		writeJSON(w, state, http.StatusOK, view)
	}))

	// mark passed
	muxer.HandleFunc("POST /codes/{code}/pass", AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())

		transition, err := as.Engine.MarkPassed(r.Context(), r.PathValue("code"))
		if err != nil {
			if errors.Is(err, checkin.ErrCodeNotFound) {
				metric.CheckIns.WithLabelValues("not_found").Inc()
			}
			writeError(w, state, "can't mark code as passed", err)
			return
		}

		switch transition.Changed {
		case true:
			metric.CheckIns.WithLabelValues("passed").Inc()
			state.Notify(KindSuccess, transition.Attendee.FullName()+" checked in")
		case false:
			metric.CheckIns.WithLabelValues("already_passed").Inc()
			state.Notify(KindInfo, transition.Attendee.FullName()+" has already passed")
		}
		writeJSON(w, state, http.StatusOK, transition)
	}))
}
