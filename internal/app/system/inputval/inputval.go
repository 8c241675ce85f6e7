// Package inputval validates decoded request bodies with
// go-playground/validator and turns failures into one readable message.
//
//	type createBookInput struct {
//	    Titre   string   `json:"titre" validate:"required"`
//	    Prix    *float64 `json:"prix" validate:"required,gte=0"`
//	}
//
//	if err := inputval.Struct(&in); err != nil {
//	    uierrors.RenderInvalid(w, err.Error())
//	    return
//	}
package inputval

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed rule, reported with the JSON field name.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e FieldError) message() string {
	switch e.Tag {
	case "required":
		return e.Field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field, e.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field, e.Param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field, e.Param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", e.Field, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field, e.Param)
	case "objectid":
		return e.Field + " must be a valid id"
	case "url":
		return e.Field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Tag)
	}
}

// Error collects every FieldError of one validation run.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.message()
	}
	return strings.Join(msgs, "; ")
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	})
	return validate
}

// Struct validates s. It returns nil or an *Error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &Error{Fields: []FieldError{{Field: "body", Tag: "invalid"}}}
	}
	out := &Error{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// ErrInvalidID is returned by ObjectID for malformed hex ids.
var ErrInvalidID = errors.New("invalid id")

// ObjectID parses a hex ObjectID taken from a path or query parameter.
func ObjectID(hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// OptionalObjectID parses hex when it is present. Empty strings and the
// literal "undefined" sent by some clients yield (nil, nil).
func OptionalObjectID(hex string) (*primitive.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" || hex == "undefined" || hex == "null" {
		return nil, nil
	}
	oid, err := ObjectID(hex)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

// ObjectIDs parses every entry of hexes.
func ObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		oid, err := ObjectID(h)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}
