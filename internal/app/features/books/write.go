// internal/app/features/books/write.go
package books

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/comicshelf/internal/app/features/errors"
	"github.com/dalemusser/comicshelf/internal/app/features/shared/bookview"
	artiststore "github.com/dalemusser/comicshelf/internal/app/store/artists"
	bookstore "github.com/dalemusser/comicshelf/internal/app/store/books"
	"github.com/dalemusser/comicshelf/internal/app/system/imagestore"
	"github.com/dalemusser/comicshelf/internal/app/system/inputval"
	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/dalemusser/comicshelf/internal/app/system/metrics"
	"github.com/dalemusser/comicshelf/internal/app/system/timeouts"
	"github.com/dalemusser/comicshelf/internal/app/system/txn"
	"github.com/dalemusser/comicshelf/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgCreateInvalid = "Informations invalides, please check your data."
	msgUpdateInvalid = "Invalid inputs passed, please check your data."
)

// bookInput is the create/replace request body. In multipart requests it
// arrives JSON-encoded in the "book" form field.
type bookInput struct {
	Titre        string         `json:"titre" validate:"required"`
	Serie        string         `json:"serie"`
	Tome         *int           `json:"tome" validate:"omitempty,gte=0"`
	Version      *int           `json:"version" validate:"omitempty,gte=0"`
	Image        string         `json:"image"`
	Prix         *float64       `json:"prix" validate:"required,gte=0"`
	Editeur      string         `json:"editeur" validate:"required"`
	Format       string         `json:"format"`
	Genre        string         `json:"genre"`
	Type         string         `json:"type" validate:"omitempty,oneof=Comics BD Mangas Romans"`
	DateParution *inputval.Date `json:"date_parution"`
	Poids        *float64       `json:"poids" validate:"omitempty,gte=0"`
	Planches     *int           `json:"planches" validate:"omitempty,gte=0"`
	Auteurs      []string       `json:"auteurs"`
	Dessinateurs []string       `json:"dessinateurs"`
}

func (in *bookInput) trim() {
	in.Titre = strings.TrimSpace(in.Titre)
	in.Editeur = strings.TrimSpace(in.Editeur)
	in.Type = strings.TrimSpace(in.Type)
}

// toBook maps the input onto a book. Artist ids are filled in by the caller.
func (in bookInput) toBook() models.Book {
	b := models.Book{
		Titre:        in.Titre,
		Serie:        in.Serie,
		Tome:         in.Tome,
		Version:      in.Version,
		Editeur:      in.Editeur,
		Image:        in.Image,
		Format:       in.Format,
		Genre:        in.Genre,
		Type:         in.Type,
		DateParution: in.DateParution.Ptr(),
		Poids:        in.Poids,
		Planches:     in.Planches,
	}
	if in.Prix != nil {
		b.Prix = *in.Prix
	}
	return b
}

// readBook decodes a JSON or multipart body. A cover in the multipart
// "image" field is saved first and its URL replaces input.image; the
// returned path must be discarded if the write later fails. On failure the
// response has been written and ok is false.
func (h *Handler) readBook(w http.ResponseWriter, r *http.Request, invalidMsg string) (in bookInput, upload string, ok bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if h.Images == nil {
			uierrors.RenderInvalid(w, "Image uploads are disabled.")
			return in, "", false
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.Images.MaxBytes+jsonio.MaxBodyBytes)
		if err := r.ParseMultipartForm(jsonio.MaxBodyBytes); err != nil {
			uierrors.RenderInvalid(w, invalidMsg)
			return in, "", false
		}
		if err := jsonio.Unmarshal([]byte(r.FormValue("book")), &in); err != nil {
			uierrors.RenderInvalid(w, invalidMsg)
			return in, "", false
		}

		file, _, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			uierrors.RenderInvalid(w, invalidMsg)
			return in, "", false
		default:
			defer file.Close()
			saved, err := h.Images.Save(file)
			if errors.Is(err, imagestore.ErrUnsupportedType) || errors.Is(err, imagestore.ErrTooLarge) {
				uierrors.RenderInvalid(w, "Invalid image: "+err.Error()+".")
				return in, "", false
			}
			if err != nil {
				h.ErrLog.LogServerError(w, r, "save cover image failed", err, "")
				return in, "", false
			}
			in.Image = saved.URL
			upload = saved.Path
		}
	} else if err := jsonio.Decode(w, r, &in); err != nil {
		uierrors.RenderInvalid(w, invalidMsg)
		return in, "", false
	}

	in.trim()
	if err := inputval.Struct(&in); err != nil {
		h.discard(upload)
		uierrors.RenderInvalid(w, invalidMsg+" "+err.Error())
		return in, "", false
	}
	return in, upload, true
}

// discard removes an uploaded file after a failed write.
func (h *Handler) discard(path string) {
	if path != "" && h.Images != nil {
		h.Images.Remove(path)
	}
}

// removeCover deletes a replaced or orphaned cover when it was uploaded
// through this service and no other book still shows it. When the lookup
// fails the file is kept; the cover sweep removes it later if unused.
func (h *Handler) removeCover(ctx context.Context, url string) {
	if h.Images == nil || url == "" {
		return
	}
	path := h.Images.PathForURL(url)
	if path == "" {
		return
	}
	others, err := h.Books.Find(ctx, bson.M{"image": url})
	if err != nil {
		h.Log.Warn("cover still-in-use check failed; keeping file",
			zap.String("image", url), zap.Error(err))
		return
	}
	if len(others) > 0 {
		return
	}
	h.discard(path)
}

// HandleCreate handles POST /api/book/.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, upload, ok := h.readBook(w, r, msgCreateInvalid)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create book")
	defer cancel()

	var created models.Book
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		authors, illustrators, err := h.Artists.Resolve(ctx, in.Auteurs, in.Dessinateurs)
		if err != nil {
			return err
		}
		b := in.toBook()
		b.Auteurs = artiststore.IDs(authors)
		b.Dessinateurs = artiststore.IDs(illustrators)

		created, err = h.Books.Create(ctx, b)
		if err != nil {
			return err
		}
		return h.Artists.Link(ctx, created.ID, append(b.Auteurs, b.Dessinateurs...))
	})
	if err != nil {
		h.discard(upload)
		h.ErrLog.LogServerError(w, r, "create book failed", err, "Creating book failed, please try again.")
		return
	}

	metrics.BookWrites.WithLabelValues("create").Inc()
	h.Log.Info("book created", zap.String("book_id", created.ID.Hex()), zap.String("titre", created.Titre))
	jsonio.Write(w, http.StatusCreated, createdResponse{BookID: created.ID.Hex()})
}

// HandleUpdate handles PATCH /api/book/edit/{id}. Every mutable field is
// overwritten with the request's value; omitted fields are cleared.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderInvalid(w, "id must be a valid id")
		return
	}
	in, upload, ok := h.readBook(w, r, msgUpdateInvalid)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "replace book")
	defer cancel()

	var (
		previous models.Book
		updated  models.Book
		artists  []models.Artist
	)
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		previous, err = h.Books.GetByID(ctx, id)
		if err != nil {
			return err
		}
		authors, illustrators, err := h.Artists.Resolve(ctx, in.Auteurs, in.Dessinateurs)
		if err != nil {
			return err
		}

		b := in.toBook()
		b.ID = id
		b.Auteurs = artiststore.IDs(authors)
		b.Dessinateurs = artiststore.IDs(illustrators)
		if updated, err = h.Books.Replace(ctx, b); err != nil {
			return err
		}

		linked := append(append([]primitive.ObjectID{}, b.Auteurs...), b.Dessinateurs...)
		if err := h.Artists.Unlink(ctx, id, stale(previous, linked)); err != nil {
			return err
		}
		if err := h.Artists.Link(ctx, id, linked); err != nil {
			return err
		}
		artists = append(authors, illustrators...)
		return nil
	})
	if errors.Is(err, bookstore.ErrNotFound) {
		h.discard(upload)
		uierrors.RenderNotFound(w, "Le livre à éditer n'a pas été trouvé.")
		return
	}
	if err != nil {
		h.discard(upload)
		h.ErrLog.LogServerError(w, r, "replace book failed", err, "La mise à jour du livre a échoué, veuillez réessayer.")
		return
	}

	if previous.Image != updated.Image {
		h.removeCover(ctx, previous.Image)
	}
	metrics.BookWrites.WithLabelValues("replace").Inc()
	jsonio.Write(w, http.StatusOK, updatedResponse{
		Book: bookview.Populate(updated, bookview.IndexArtists(artists)),
	})
}

// stale returns the artists linked to previous that are not in linked.
func stale(previous models.Book, linked []primitive.ObjectID) []primitive.ObjectID {
	keep := make(map[primitive.ObjectID]struct{}, len(linked))
	for _, id := range linked {
		keep[id] = struct{}{}
	}
	var out []primitive.ObjectID
	for _, id := range bookview.ArtistIDs(previous) {
		if _, ok := keep[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// HandleDelete handles DELETE /api/book/{id}. Collection entries, artist
// back-references and the book go together or not at all.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectID(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderInvalid(w, "id must be a valid id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete book")
	defer cancel()

	var deleted models.Book
	var entries int64
	err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		if deleted, err = h.Books.GetByID(ctx, id); err != nil {
			return err
		}
		if entries, err = h.Entries.DeleteByBook(ctx, id); err != nil {
			return err
		}
		if err := h.Artists.UnlinkAll(ctx, id); err != nil {
			return err
		}
		n, err := h.Books.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return bookstore.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, bookstore.ErrNotFound) {
		uierrors.RenderNotFound(w, "Failed to find book with provided ID")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete book failed", err, "Failed to delete book")
		return
	}

	h.removeCover(ctx, deleted.Image)
	metrics.BookWrites.WithLabelValues("delete").Inc()
	h.Log.Info("book deleted",
		zap.String("book_id", id.Hex()),
		zap.Int64("collection_entries", entries))
	jsonio.Write(w, http.StatusOK, messageResponse{Message: "Le livre a été supprimé !"})
}
