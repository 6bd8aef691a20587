package handlers

import (
	"errors"
	"net/http"
	"strings"

	"barback-go/internal/app"
	"barback-go/internal/db"
	"barback-go/internal/menu"
	"barback-go/internal/recipe"

	"github.com/go-chi/chi/v5"
)

func (s *Server) CocktailsGet(w http.ResponseWriter, r *http.Request) {
	var onlyAvailable *bool
	cacheKey := "menu:all"
	if v := r.URL.Query().Get("available"); v != "" {
		b := v == "true" || v == "1"
		onlyAvailable = &b
		if b {
			cacheKey = "menu:av1"
		} else {
			cacheKey = "menu:av0"
		}
	}

	if body, ok := s.App.Cache().Get(r.Context(), cacheKey); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	list, err := s.App.Store().Q.ListCocktails(onlyAvailable)
	if err != nil {
		s.respondInternal(w, "list cocktails", err)
		return
	}
	out := make([]menu.Cocktail, 0, len(list))
	for i := range list {
		out = append(out, toCocktailJSON(&list[i]))
	}

	if body, err := encodeForCache(out); err == nil {
		s.App.Cache().Set(r.Context(), cacheKey, body)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) CocktailGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseInt64(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid cocktail id")
		return
	}
	c, err := s.App.Store().Q.GetCocktailByID(id)
	if err != nil {
		s.respondInternal(w, "load cocktail", err)
		return
	}
	if c == nil {
		s.respondError(w, http.StatusNotFound, "cocktail not found")
		return
	}
	s.respond(w, http.StatusOK, toCocktailJSON(c))
}

type cocktailSaveRequest struct {
	recipe.Draft
	Enabled               *bool `json:"enabled"`
	ConfirmNewIngredients bool  `json:"confirmNewIngredients"`
}

func (s *Server) CocktailCreatePost(w http.ResponseWriter, r *http.Request) {
	s.saveCocktail(w, r, 0)
}

func (s *Server) CocktailPatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseInt64(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid cocktail id")
		return
	}
	existing, err := s.App.Store().Q.GetCocktailByID(id)
	if err != nil {
		s.respondInternal(w, "load cocktail", err)
		return
	}
	if existing == nil {
		s.respondError(w, http.StatusNotFound, "cocktail not found")
		return
	}
	s.saveCocktail(w, r, id)
}

// saveCocktail runs the recipe save flow for create (id == 0) and update.
// Ingredient names unknown to the catalog interrupt the save with a 409
// carrying the new names; resubmitting with confirmNewIngredients creates
// them first, tolerating races where another admin created one meanwhile.
func (s *Server) saveCocktail(w http.ResponseWriter, r *http.Request, id int64) {
	var req cocktailSaveRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	catalog, err := s.App.Store().Q.ListIngredients()
	if err != nil {
		s.respondInternal(w, "list ingredients", err)
		return
	}
	names := make([]string, 0, len(catalog))
	for _, ing := range catalog {
		names = append(names, ing.Name)
	}

	ed := recipe.NewEditor(names)
	ed.Edit(req.Draft)
	if err := ed.Submit(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if ed.State() == recipe.StateAwaitingConfirmation {
		if !req.ConfirmNewIngredients {
			newNames := make([]string, 0, len(ed.NewIngredients()))
			for _, l := range ed.NewIngredients() {
				newNames = append(newNames, l.Name)
			}
			s.respond(w, http.StatusConflict, map[string]any{
				"error":          "unknown ingredients require confirmation",
				"newIngredients": newNames,
			})
			return
		}
		for _, l := range ed.NewIngredients() {
			cat := l.Category
			if !validCategory(cat) {
				cat = "Autre"
			}
			_, err := s.App.Store().Q.CreateIngredient(db.CreateIngredientParams{
				Name:     l.Name,
				Category: cat,
				InStock:  true,
			})
			if err != nil {
				// likely created concurrently; the name lookup below decides
				s.App.Log().Warn("create ingredient during save", "name", l.Name, "err", err)
			}
		}
		if err := ed.ConfirmCreate(); err != nil {
			s.respondInternal(w, "editor state", err)
			return
		}
	}

	clean := ed.Clean()
	lines := make([]db.LineUpsertItem, 0, len(clean.Ingredients))
	for _, l := range clean.Ingredients {
		ing, err := s.App.Store().Q.GetIngredientByName(l.Name)
		if err != nil {
			s.respondInternal(w, "resolve ingredient", err)
			return
		}
		if ing == nil {
			s.respondError(w, http.StatusBadRequest, "unknown ingredient: "+l.Name)
			return
		}
		lines = append(lines, db.LineUpsertItem{IngredientID: ing.ID, Quantity: l.Quantity})
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	saveErr := func() error {
		if id == 0 {
			if dup, _ := s.App.Store().Q.GetCocktailByName(clean.Name); dup != nil {
				return errDuplicateName
			}
			cid, err := s.App.Store().Q.CreateCocktail(db.CreateCocktailParams{
				Name: clean.Name, Image: clean.Image, IsEnabled: enabled,
			})
			if err != nil {
				return err
			}
			id = cid
		} else {
			if dup, _ := s.App.Store().Q.GetCocktailByName(clean.Name); dup != nil && dup.ID != id {
				return errDuplicateName
			}
			if req.Enabled == nil {
				cur, err := s.App.Store().Q.GetCocktailByID(id)
				if err != nil {
					return err
				}
				enabled = cur.IsEnabled
			}
			if err := s.App.Store().Q.UpdateCocktail(db.UpdateCocktailParams{
				ID: id, Name: clean.Name, Image: clean.Image, IsEnabled: enabled,
			}); err != nil {
				return err
			}
		}
		return s.App.Store().Q.ReplaceCocktailLines(id, lines)
	}()
	ed.FinishSave(saveErr)

	if saveErr == errDuplicateName {
		s.respondError(w, http.StatusConflict, "a cocktail with this name already exists")
		return
	}
	if saveErr != nil {
		s.respondInternal(w, "save cocktail", saveErr)
		return
	}

	s.App.Cache().Invalidate(r.Context())
	s.App.Events().BroadcastInventory(app.Event{Type: "cocktail:saved", Data: map[string]any{"cocktail_id": id}})

	c, err := s.App.Store().Q.GetCocktailByID(id)
	if err != nil || c == nil {
		s.respondInternal(w, "reload cocktail", err)
		return
	}
	s.respond(w, http.StatusOK, toCocktailJSON(c))
}

func (s *Server) CocktailDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseInt64(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid cocktail id")
		return
	}
	c, err := s.App.Store().Q.GetCocktailByID(id)
	if err != nil {
		s.respondInternal(w, "load cocktail", err)
		return
	}
	if c == nil {
		s.respondError(w, http.StatusNotFound, "cocktail not found")
		return
	}
	if err := s.App.Store().Q.DeleteCocktail(id); err != nil {
		// orders reference cocktails with ON DELETE RESTRICT
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			s.respondError(w, http.StatusConflict, "cocktail has orders; disable it instead")
			return
		}
		s.respondInternal(w, "delete cocktail", err)
		return
	}
	s.App.Cache().Invalidate(r.Context())
	s.App.Events().BroadcastInventory(app.Event{Type: "cocktail:deleted", Data: map[string]any{"cocktail_id": id}})
	s.respond(w, http.StatusOK, map[string]any{"deleted": id})
}

var errDuplicateName = errors.New("duplicate cocktail name")

func validCategory(c string) bool {
	switch strings.TrimSpace(c) {
	case "Alcool", "Fruits", "Sucrant", "Diluant", "Garniture", "JNPR", "Autre":
		return true
	}
	return false
}
