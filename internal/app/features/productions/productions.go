// internal/app/features/productions/productions.go
package productions

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	productionstore "github.com/dalemusser/comicshelf/internal/app/store/productions"
	"github.com/dalemusser/comicshelf/internal/app/system/htmlsanitize"
	"github.com/dalemusser/comicshelf/internal/app/system/inputval"
	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgNotFound = "Impossible de trouver la production avec l'identifiant fourni."

func idParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := inputval.ObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderInvalid(w, "id must be a valid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ServeList handles GET /api/marvel-productions in watch order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list productions")
	defer cancel()

	prods, err := h.Productions.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list productions failed", err,
			"La collecte des productions Marvel a échoué, veuillez réessayer...")
		return
	}
	jsonio.Write(w, http.StatusOK, listResponse{Productions: prods})
}

func (h *Handler) ServeProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get production")
	defer cancel()

	p, err := h.Productions.GetByID(ctx, id)
	if errors.Is(err, productionstore.ErrNotFound) {
		uierrors.RenderNotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "get production failed", err,
			"La collecte de la production Marvel a échoué, veuillez réessayer...")
		return
	}
	jsonio.Write(w, http.StatusOK, productionResponse{Production: p})
}

// HandleCreate handles POST /api/marvel-productions. The new production
// goes to the end of the watch order.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.RenderInvalid(w, "")
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Poster = strings.TrimSpace(in.Poster)
	if err := inputval.Struct(&in); err != nil {
		uierrors.RenderInvalid(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create production")
	defer cancel()

	p, err := h.Productions.Create(ctx, models.MarvelProduction{
		Title:        in.Title,
		Poster:       in.Poster,
		Length:       *in.Length,
		Type:         strings.TrimSpace(in.Type),
		Season:       in.Season,
		Episode:      in.Episode,
		EpisodeTitle: strings.TrimSpace(in.EpisodeTitle),
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create production failed", err,
			"Creating production failed, please try again.")
		return
	}

	metrics.ProductionWrites.WithLabelValues("create").Inc()
	h.Log.Info("production created",
		zap.String("id", p.ID.Hex()),
		zap.Int("order", p.Order))
	jsonio.Write(w, http.StatusCreated, createdResponse{ProdID: p.ID.Hex()})
}

// HandleWatch handles PATCH /api/marvel-productions/{id}: it appends a
// watch date and/or replaces the review.
func (h *Handler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in watchInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.RenderInvalid(w, "")
		return
	}
	review := htmlsanitize.Sanitize(in.Review)
	if review == "" && in.WatchDate.Ptr() == nil {
		uierrors.RenderInvalid(w, "Une date de visionnage ou une critique est requise.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update production")
	defer cancel()

	p, err := h.Productions.RecordWatch(ctx, id, in.WatchDate.Ptr(), review)
	if errors.Is(err, productionstore.ErrNotFound) {
		uierrors.RenderNotFound(w, msgNotFound)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update production failed", err,
			"La mise à jour de la production a échoué, veuillez réessayer.")
		return
	}

	metrics.ProductionWrites.WithLabelValues("watch").Inc()
	jsonio.Write(w, http.StatusOK, productionResponse{Production: p})
}
