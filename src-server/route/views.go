package route

import (
	"net/http"

	"checkin/src-server/utils"
)

type homeResBody struct {
	Authenticated bool   `json:"authenticated"`
	Landing       string `json:"landing,omitempty"`
}

type insideResBody struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func Views(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /{$}", WithState(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())
		body := homeResBody{Authenticated: state.Authenticated()}
		if body.Authenticated {
			body.Landing = landing(state.User.IsAdmin)
		}
		writeJSON(w, state, http.StatusOK, body)
	}))

	muxer.HandleFunc("GET /inside", AuthMiddleware(as, func(w http.ResponseWriter, r *http.Request) {
		state := StateFromContext(r.Context())
		writeJSON(w, state, http.StatusOK, insideResBody{
			Email:   state.User.Email,
			IsAdmin: state.User.IsAdmin,
		})
	}))
}
