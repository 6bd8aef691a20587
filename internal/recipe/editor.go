// Package recipe implements the save flow for cocktail recipes: validation,
// detection of ingredient names missing from the catalog, and the explicit
// confirmation step that stands between typing a new name and silently
// creating it.
package recipe

import (
	"fmt"
	"strings"
)

// Line is one ingredient line as edited. Category travels with the line but
// plays no part in new-ingredient detection; matching is by name only.
type Line struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Category string `json:"category"`
}

// Draft is the recipe as submitted from the editor.
type Draft struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Ingredients []Line `json:"ingredients"`
}

type State string

const (
	StateEditing              State = "editing"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateSaving               State = "saving"
	StateSaved                State = "saved"
)

// ValidationError reports which field failed, for inline display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate trims the draft, silently drops ingredient lines whose name is
// empty after trimming, and rejects drafts with an empty name or no surviving
// lines. The returned draft is the cleaned one that should be persisted.
func Validate(d Draft) (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Image = strings.TrimSpace(d.Image)
	if d.Name == "" {
		return Draft{}, &ValidationError{Field: "name", Message: "name is required"}
	}

	kept := make([]Line, 0, len(d.Ingredients))
	for _, l := range d.Ingredients {
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" {
			continue
		}
		l.Quantity = strings.TrimSpace(l.Quantity)
		kept = append(kept, l)
	}
	if len(kept) == 0 {
		return Draft{}, &ValidationError{Field: "ingredients", Message: "at least one ingredient is required"}
	}
	d.Ingredients = kept
	return d, nil
}

// DetectNew returns the lines whose names are absent from the catalog.
// Matching is trimmed and case-insensitive; duplicates collapse to one entry.
func DetectNew(lines []Line, catalog []string) []Line {
	known := make(map[string]struct{}, len(catalog))
	for _, n := range catalog {
		known[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}

	var out []Line
	seen := map[string]struct{}{}
	for _, l := range lines {
		key := strings.ToLower(strings.TrimSpace(l.Name))
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Editor drives one save attempt through its states:
//
//	Editing -> Submit -> Editing (validation failed)
//	                   | AwaitingConfirmation (unknown ingredient names)
//	                   | Saving
//	AwaitingConfirmation -> Correct -> Editing
//	                      | ConfirmCreate -> Saving
//	Saving -> FinishSave(nil) -> Saved
//	        | FinishSave(err) -> Editing
type Editor struct {
	catalog []string

	state State
	draft Draft
	clean Draft
	fresh []Line
}

func NewEditor(catalog []string) *Editor {
	return &Editor{catalog: catalog, state: StateEditing}
}

func (e *Editor) State() State { return e.state }

// Clean returns the validated draft; only meaningful once Submit succeeded.
func (e *Editor) Clean() Draft { return e.clean }

// NewIngredients returns the lines awaiting creation confirmation.
func (e *Editor) NewIngredients() []Line { return e.fresh }

func (e *Editor) Edit(d Draft) {
	e.draft = d
	e.state = StateEditing
	e.fresh = nil
}

// Submit validates the current draft. On validation failure the editor stays
// in Editing and the error is returned. Otherwise it moves to
// AwaitingConfirmation when unknown ingredients are present, or straight to
// Saving.
func (e *Editor) Submit() error {
	if e.state != StateEditing {
		return fmt.Errorf("submit from %s", e.state)
	}
	clean, err := Validate(e.draft)
	if err != nil {
		return err
	}
	e.clean = clean
	e.fresh = DetectNew(clean.Ingredients, e.catalog)
	if len(e.fresh) > 0 {
		e.state = StateAwaitingConfirmation
	} else {
		e.state = StateSaving
	}
	return nil
}

// Correct abandons the confirmation step and returns to editing.
func (e *Editor) Correct() error {
	if e.state != StateAwaitingConfirmation {
		return fmt.Errorf("correct from %s", e.state)
	}
	e.state = StateEditing
	return nil
}

// ConfirmCreate accepts the new ingredients and proceeds to saving. The
// caller is responsible for actually creating them (each independently,
// treating "already exists" as non-fatal) before persisting the cocktail.
func (e *Editor) ConfirmCreate() error {
	if e.state != StateAwaitingConfirmation {
		return fmt.Errorf("confirm from %s", e.state)
	}
	e.state = StateSaving
	return nil
}

// FinishSave records the outcome of the save call: Saved on success, back to
// Editing on failure so the error can be surfaced and retried.
func (e *Editor) FinishSave(err error) {
	if e.state != StateSaving {
		return
	}
	if err != nil {
		e.state = StateEditing
		return
	}
	e.state = StateSaved
}
