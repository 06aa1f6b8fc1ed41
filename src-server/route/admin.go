package route

import (
	"net/http"
	"strconv"

	"checkin/src-server/metric"
	"checkin/src-server/utils"
)

type setStatusReqBody struct {
	Status string `json:"status"`
}

type registerReqBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func Admin(muxer *http.ServeMux, as *utils.AppState) {
	// search
	muxer.HandleFunc("GET /admin/attendees", AdminMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())

		records, err := as.Engine.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, state, "can't search attendees", err)
			return
		}
		writeJSON(w, state, http.StatusOK, records)
	}))

	// override
	muxer.HandleFunc("PUT /admin/attendees/{id}/status", AdminMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			badRequest(w, state, "Invalid attendee id")
			return
		}
		var reqBody setStatusReqBody
		if err := decodeJSON(w, r, &reqBody); err != nil {
			badRequest(w, state, "Invalid request body")
			return
		}

		record, err := as.Engine.SetStatus(r.Context(), id, reqBody.Status)
		if err != nil {
			writeError(w, state, "can't set attendee status", err)
			return
		}
		metric.StatusOverrides.WithLabelValues(record.Status).Inc()

		state.Notify(KindSuccess, record.FullName()+" is now "+record.StatusLabel)
		writeJSON(w, state, http.StatusOK, record)
	}))

	// register
	muxer.HandleFunc("POST /admin/attendees", AdminMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())

		var reqBody registerReqBody
		if err := decodeJSON(w, r, &reqBody); err != nil {
			badRequest(w, state, "Invalid request body")
			return
		}

		record, err := as.Engine.Register(r.Context(), reqBody.FirstName, reqBody.LastName)
		if err != nil {
			writeError(w, state, "can't register attendee", err)
			return
		}
		metric.Registrations.Inc()

		state.Notify(KindSuccess, "Registered "+record.FullName()+" with code "+record.Code)
		writeJSON(w, state, http.StatusCreated, record)
	}))
}
