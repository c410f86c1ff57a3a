package ptv

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Schema is the response-contract seam between the client core and the
// per-endpoint catalog. SafeParse never panics and never returns an error:
// it either yields the typed data or the list of validation issues.
type Schema interface {
	SafeParse(raw []byte) (any, []Issue)
}

// SchemaFunc adapts a function to the Schema interface.
type SchemaFunc func(raw []byte) (any, []Issue)

func (f SchemaFunc) SafeParse(raw []byte) (any, []Issue) {
	return f(raw)
}

// RawSchema accepts any well-formed JSON document and returns it decoded,
// for endpoints whose shape the caller interprets manually.
var RawSchema Schema = SchemaFunc(func(raw []byte) (any, []Issue) {
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, []Issue{{Path: "$", Message: "invalid JSON: " + err.Error()}}
	}
	return out, nil
})

// StructSchema validates responses by decoding into T and applying T's
// `validate` struct tags. Non-struct payload types (maps, slices) decode
// without tag validation.
type StructSchema[T any] struct {
	validate *validator.Validate
}

// NewStructSchema creates a schema for T with a dedicated validator.
func NewStructSchema[T any]() *StructSchema[T] {
	return &StructSchema[T]{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// SafeParse implements Schema.
func (s *StructSchema[T]) SafeParse(raw []byte) (any, []Issue) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, []Issue{{Path: "$", Message: "invalid JSON: " + err.Error()}}
	}

	if err := s.validate.Struct(out); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			// T is not a struct; decoding alone is the contract.
			return out, nil
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]Issue, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, Issue{
					Path:    fe.Namespace(),
					Message: fmt.Sprintf("failed %q validation", fe.Tag()),
				})
			}
			return nil, issues
		}
		return nil, []Issue{{Path: "$", Message: err.Error()}}
	}

	return out, nil
}
