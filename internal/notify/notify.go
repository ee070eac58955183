// Package notify builds the toast notifications shown after a form action.
package notify

import (
	"errors"
	"fmt"
	"strings"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/JonMunkholm/erpdash/internal/core"
)

// Variant selects the toast style.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is one transient notification.
type Toast struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Variant     Variant `json:"variant"`
}

// Destructive reports whether the toast reports a failure.
func (t Toast) Destructive() bool {
	return t.Variant == VariantDestructive
}

const (
	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 8
)

// RetryLater is the description of every store failure toast.
const RetryLater = "Please try again later"

func newID() string {
	id, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		// crypto/rand failure; a fixed id only breaks dismissal of duplicates.
		return "toast"
	}
	return "t-" + id
}

// Success returns a default toast.
func Success(title, description string) Toast {
	return Toast{ID: newID(), Title: title, Description: description, Variant: VariantDefault}
}

// Failure returns a destructive toast.
func Failure(title, description string) Toast {
	return Toast{ID: newID(), Title: title, Description: description, Variant: VariantDestructive}
}

// StoreFailure is the generic toast for a failed project store round trip.
func StoreFailure(title string) Toast {
	return Failure(title, RetryLater)
}

func CustomerAdded() Toast {
	return Success("Customer added successfully", "")
}

func CustomerDeleted() Toast {
	return Success("Customer deleted", "")
}

func CustomerColumnAdded(label string) Toast {
	return Success("Column added", fmt.Sprintf("%q is now part of the customer table", label))
}

func ProjectColumnAdded() Toast {
	return Success("Column added", "The new column has been added successfully")
}

// Board returns one destructive toast per failed read of a project board load.
func Board(b core.ProjectBoard) []Toast {
	var toasts []Toast
	if b.ProjectsErr != nil {
		toasts = append(toasts, StoreFailure("Error fetching projects"))
	}
	if b.ColumnsErr != nil {
		toasts = append(toasts, StoreFailure("Error fetching columns"))
	}
	return toasts
}

// FromError turns a failed action into a toast. Validation errors name the
// problem; store failures get the generic retry message; anything else uses
// the mapped user message.
func FromError(title string, err error) Toast {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		parts := make([]string, len(ve.Errors))
		for i, fe := range ve.Errors {
			parts[i] = fe.Error()
		}
		return Failure(title, capitalize(strings.Join(parts, "; ")))
	}
	if errors.Is(err, core.ErrProjectStore) {
		return StoreFailure(title)
	}
	return Failure(title, core.MapError(err).String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
