// internal/app/features/status/handler.go
package status

import (
	"net/http"
	"time"

	metricsstore "github.com/dalemusser/comicshelf/internal/app/store/metrics"
	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler reports service uptime and catalog totals.
type Handler struct {
	DB      *mongo.Database
	Log     *zap.Logger
	Started time.Time
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Started: time.Now()}
}

type statusResponse struct {
	Status        string              `json:"status"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	Counts        metricsstore.Counts `json:"counts"`
}

// Serve handles GET /status. Counts that cannot be read are reported as 0.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "status counts")
	defer cancel()

	jsonio.Write(w, http.StatusOK, statusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.Started).Seconds()),
		Counts:        metricsstore.FetchCounts(ctx, h.DB, h.Log),
	})
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}
