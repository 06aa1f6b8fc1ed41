package route

import (
	"net/http"

	"checkin/src-server/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler mounts every route on a fresh ServeMux.
func NewHandler(as *utils.AppState) http.Handler {
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	Views(muxer, as)
	Auth(muxer, as)
	Checkin(muxer, as)
	Admin(muxer, as)
	return LoggingMiddleware(muxer)
}
