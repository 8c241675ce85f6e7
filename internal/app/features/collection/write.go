// internal/app/features/collection/write.go
package collection

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	collectionstore "github.com/dalemusser/comicshelf/internal/app/store/collections"
	"github.com/dalemusser/comicshelf/internal/app/system/htmlsanitize"
	"github.com/dalemusser/comicshelf/internal/app/system/inputval"
	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"github.com/dalemusser/comicshelf/internal/app/system/normalize"
	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const msgBookNotFound = "Impossible de trouver le livre avec l'identifiant fourni."

type addInput struct {
	IDsBook   []string       `json:"ids_book" validate:"required,min=1,dive,objectid"`
	IDUser    string         `json:"id_user" validate:"required,objectid"`
	ListName  string         `json:"list_name" validate:"required"`
	DateAchat *inputval.Date `json:"date_achat"`
}

// HandleAdd handles POST /api/collection/add. Owning a book clears its
// wishlist flag; wishlisting an owned book leaves the entry unchanged.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in addInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.RenderInvalid(w, "")
		return
	}
	in.ListName = normalize.ListName(in.ListName)
	if err := inputval.Struct(&in); err != nil {
		uierrors.RenderInvalid(w, err.Error())
		return
	}
	if in.ListName != models.ListCollection && in.ListName != models.ListWishlist {
		uierrors.RenderInvalid(w, "list_name must be one of: collection wishlist")
		return
	}

	owner, _ := inputval.ObjectID(in.IDUser)
	ids, err := inputval.ObjectIDs(in.IDsBook)
	if err != nil {
		uierrors.RenderInvalid(w, "ids_book must be valid ids")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add to collection")
	defer cancel()

	found, err := h.Books.GetByIDs(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load books failed", err, "La création de la collection a échoué, veuillez réessayer.")
		return
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			uierrors.RenderNotFound(w, msgBookNotFound)
			return
		}
	}

	for _, id := range ids {
		if in.ListName == models.ListCollection {
			_, err = h.Entries.MarkOwned(ctx, owner, id, in.DateAchat.Ptr())
		} else {
			_, err = h.Entries.MarkWishlisted(ctx, owner, id)
		}
		if err != nil {
			h.ErrLog.LogServerError(w, r, "add to collection failed", err, "La création de la collection a échoué, veuillez réessayer.")
			return
		}
		metrics.CollectionWrites.WithLabelValues(in.ListName).Inc()
	}

	jsonio.Write(w, http.StatusCreated, successResponse{Success: true})
}

type editInput struct {
	IDBook   string         `json:"id_book" validate:"required,objectid"`
	IDUser   string         `json:"id_user" validate:"required,objectid"`
	Lu       *bool          `json:"lu"`
	Lien     *string        `json:"lien"`
	Review   *string        `json:"review"`
	Note     *float64       `json:"note" validate:"omitempty,gte=0,lte=10"`
	ReadDate *inputval.Date `json:"read_date"`
}

// HandleEdit handles POST /api/collection/edit. Only the supplied fields
// change; the entry is created when the user has none for the book.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var in editInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.RenderInvalid(w, "")
		return
	}
	if err := inputval.Struct(&in); err != nil {
		uierrors.RenderInvalid(w, err.Error())
		return
	}

	patch := collectionstore.Patch{Lu: in.Lu, Note: in.Note, ReadDate: in.ReadDate.Ptr()}
	if in.Lien != nil {
		lien := strings.TrimSpace(*in.Lien)
		if lien != "" && !urlutil.IsValidAbsHTTPURL(lien) {
			uierrors.RenderInvalid(w, "lien must be a valid URL")
			return
		}
		patch.Lien = &lien
	}
	if in.Review != nil {
		review := htmlsanitize.Sanitize(*in.Review)
		patch.Review = &review
	}

	owner, _ := inputval.ObjectID(in.IDUser)
	book, _ := inputval.ObjectID(in.IDBook)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "edit collection entry")
	defer cancel()

	found, err := h.Books.GetByIDs(ctx, []primitive.ObjectID{book})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load book failed", err, "La modification de la collection a échoué, veuillez réessayer.")
		return
	}
	if _, ok := found[book]; !ok {
		uierrors.RenderNotFound(w, msgBookNotFound)
		return
	}

	if _, err := h.Entries.Apply(ctx, owner, book, patch, h.Now()); err != nil {
		h.ErrLog.LogServerError(w, r, "edit collection entry failed", err, "La modification de la collection a échoué, veuillez réessayer.")
		return
	}
	metrics.CollectionWrites.WithLabelValues("edit").Inc()

	jsonio.Write(w, http.StatusCreated, successResponse{
		Success: true,
		Message: "La modification a bien été enregistrée !",
	})
}

// HandleRemoveWishlist handles DELETE /api/collection/wishlist/{userId}/{bookId}.
func (h *Handler) HandleRemoveWishlist(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerParam(w, r)
	if !ok {
		return
	}
	book, err := inputval.ObjectID(chi.URLParam(r, "bookId"))
	if err != nil {
		uierrors.RenderInvalid(w, "bookId must be a valid id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove from wishlist")
	defer cancel()

	deleted, err := h.Entries.RemoveFromWishlist(ctx, owner, book)
	if errors.Is(err, collectionstore.ErrNotFound) {
		uierrors.RenderNotFound(w, "Ce livre n'est pas dans votre liste de souhaits.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "remove from wishlist failed", err, "")
		return
	}

	metrics.CollectionWrites.WithLabelValues("wishlist_remove").Inc()
	h.Log.Debug("wishlist entry removed",
		zap.String("owner", owner.Hex()),
		zap.String("book", book.Hex()),
		zap.Bool("entry_deleted", deleted))
	jsonio.Write(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Le livre a été retiré de votre liste de souhaits.",
	})
}
