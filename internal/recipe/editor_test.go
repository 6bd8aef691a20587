package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []string{"Rhum blanc", "Menthe", "Citron vert", "Sucre de canne", "Eau gazeuse"}

func mojitoDraft() Draft {
	return Draft{
		Name: "Mojito",
		Ingredients: []Line{
			{Name: "Rhum blanc", Quantity: "5 cl", Category: "Alcool"},
			{Name: "Menthe", Quantity: "8 feuilles", Category: "Garniture"},
			{Name: "Eau gazeuse", Quantity: "top", Category: "Diluant"},
		},
	}
}

func TestValidateTrimsAndDropsEmptyLines(t *testing.T) {
	d := Draft{
		Name:  "  Mojito  ",
		Image: " mojito.jpg ",
		Ingredients: []Line{
			{Name: "  Rhum blanc ", Quantity: " 5 cl "},
			{Name: "   "},
			{Name: "Menthe"},
		},
	}
	clean, err := Validate(d)
	require.NoError(t, err)
	assert.Equal(t, "Mojito", clean.Name)
	assert.Equal(t, "mojito.jpg", clean.Image)
	require.Len(t, clean.Ingredients, 2)
	assert.Equal(t, "Rhum blanc", clean.Ingredients[0].Name)
	assert.Equal(t, "5 cl", clean.Ingredients[0].Quantity)
}

func TestValidateRejectsEmptyName(t *testing.T) {
	_, err := Validate(Draft{Name: "   ", Ingredients: []Line{{Name: "Menthe"}}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func TestValidateRejectsNoSurvivingLines(t *testing.T) {
	_, err := Validate(Draft{Name: "Mojito", Ingredients: []Line{{Name: "  "}, {Name: ""}}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "ingredients", ve.Field)
}

func TestDetectNewMatchesCaseAndSpaceInsensitively(t *testing.T) {
	lines := []Line{
		{Name: " rhum BLANC "},
		{Name: "citron vert"},
		{Name: "Nouveau Sirop"},
	}
	fresh := DetectNew(lines, catalog)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Nouveau Sirop", fresh[0].Name)
}

func TestDetectNewCollapsesDuplicates(t *testing.T) {
	lines := []Line{
		{Name: "Sirop de fraise"},
		{Name: "sirop DE fraise"},
	}
	fresh := DetectNew(lines, catalog)
	assert.Len(t, fresh, 1)
}

func TestSubmitKnownIngredientsGoesStraightToSaving(t *testing.T) {
	ed := NewEditor(catalog)
	ed.Edit(mojitoDraft())
	require.NoError(t, ed.Submit())
	assert.Equal(t, StateSaving, ed.State())
	assert.Empty(t, ed.NewIngredients())
}

func TestSubmitUnknownIngredientAwaitsConfirmation(t *testing.T) {
	d := mojitoDraft()
	d.Ingredients = append(d.Ingredients, Line{Name: "Nouveau Sirop", Quantity: "2 cl", Category: "Sucrant"})

	ed := NewEditor(catalog)
	ed.Edit(d)
	require.NoError(t, ed.Submit())
	assert.Equal(t, StateAwaitingConfirmation, ed.State())
	require.Len(t, ed.NewIngredients(), 1)
	assert.Equal(t, "Nouveau Sirop", ed.NewIngredients()[0].Name)
}

func TestConfirmCreateProceedsToSaving(t *testing.T) {
	d := mojitoDraft()
	d.Ingredients = append(d.Ingredients, Line{Name: "Nouveau Sirop"})

	ed := NewEditor(catalog)
	ed.Edit(d)
	require.NoError(t, ed.Submit())
	require.NoError(t, ed.ConfirmCreate())
	assert.Equal(t, StateSaving, ed.State())

	ed.FinishSave(nil)
	assert.Equal(t, StateSaved, ed.State())
}

func TestCorrectReturnsToEditing(t *testing.T) {
	d := mojitoDraft()
	d.Ingredients = append(d.Ingredients, Line{Name: "Nouveau Sirop"})

	ed := NewEditor(catalog)
	ed.Edit(d)
	require.NoError(t, ed.Submit())
	require.NoError(t, ed.Correct())
	assert.Equal(t, StateEditing, ed.State())

	// fixing the name to a known ingredient saves without confirmation
	d.Ingredients[len(d.Ingredients)-1].Name = "  citron VERT "
	ed.Edit(d)
	require.NoError(t, ed.Submit())
	assert.Equal(t, StateSaving, ed.State())
}

func TestSubmitValidationFailureStaysEditing(t *testing.T) {
	ed := NewEditor(catalog)
	ed.Edit(Draft{Name: ""})
	err := ed.Submit()
	require.Error(t, err)
	assert.Equal(t, StateEditing, ed.State())
}

func TestFinishSaveFailureReturnsToEditing(t *testing.T) {
	ed := NewEditor(catalog)
	ed.Edit(mojitoDraft())
	require.NoError(t, ed.Submit())

	ed.FinishSave(errors.New("db locked"))
	assert.Equal(t, StateEditing, ed.State())

	// the draft is still there for a retry
	require.NoError(t, ed.Submit())
	assert.Equal(t, StateSaving, ed.State())
}

func TestGuardsRejectOutOfOrderCalls(t *testing.T) {
	ed := NewEditor(catalog)
	assert.Error(t, ed.ConfirmCreate())
	assert.Error(t, ed.Correct())

	ed.Edit(mojitoDraft())
	require.NoError(t, ed.Submit())
	// already past editing
	assert.Error(t, ed.Submit())
}
