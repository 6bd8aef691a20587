package handlers

import (
	"net/http"
	"strings"

	"barback-go/internal/app"
	"barback-go/internal/db"

	"github.com/go-chi/chi/v5"
)

func (s *Server) IngredientsGet(w http.ResponseWriter, r *http.Request) {
	list, err := s.App.Store().Q.ListIngredients()
	if err != nil {
		s.respondInternal(w, "list ingredients", err)
		return
	}
	out := make([]ingredientJSON, 0, len(list))
	for i := range list {
		out = append(out, toIngredientJSON(&list[i]))
	}
	s.respond(w, http.StatusOK, out)
}

type ingredientCreateRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	InStock  *bool  `json:"in_stock"`
}

func (s *Server) IngredientCreatePost(w http.ResponseWriter, r *http.Request) {
	var req ingredientCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	cat := strings.TrimSpace(req.Category)
	if cat == "" {
		cat = "Autre"
	}
	if !validCategory(cat) {
		s.respondError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if dup, err := s.App.Store().Q.GetIngredientByName(name); err != nil {
		s.respondInternal(w, "check ingredient", err)
		return
	} else if dup != nil {
		s.respondError(w, http.StatusConflict, "an ingredient with this name already exists")
		return
	}
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}
	id, err := s.App.Store().Q.CreateIngredient(db.CreateIngredientParams{
		Name: name, Category: cat, InStock: inStock,
	})
	if err != nil {
		s.respondInternal(w, "create ingredient", err)
		return
	}
	s.afterStockChange(r)
	ing, err := s.App.Store().Q.GetIngredientByID(id)
	if err != nil || ing == nil {
		s.respondInternal(w, "reload ingredient", err)
		return
	}
	s.respond(w, http.StatusCreated, toIngredientJSON(ing))
}

type ingredientPatchRequest struct {
	InStock *bool `json:"in_stock"`
}

func (s *Server) IngredientPatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseInt64(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid ingredient id")
		return
	}
	var req ingredientPatchRequest
	if err := decodeJSON(r, &req); err != nil || req.InStock == nil {
		s.respondError(w, http.StatusBadRequest, "in_stock is required")
		return
	}
	ing, err := s.App.Store().Q.GetIngredientByID(id)
	if err != nil {
		s.respondInternal(w, "load ingredient", err)
		return
	}
	if ing == nil {
		s.respondError(w, http.StatusNotFound, "ingredient not found")
		return
	}
	if err := s.App.Store().Q.SetIngredientStock(id, *req.InStock); err != nil {
		s.respondInternal(w, "update ingredient", err)
		return
	}
	s.afterStockChange(r)
	ing.InStock = *req.InStock
	s.respond(w, http.StatusOK, toIngredientJSON(ing))
}

type ingredientToggleRequest struct {
	Name    string `json:"name"`
	InStock bool   `json:"in_stock"`
}

func (s *Server) IngredientTogglePost(w http.ResponseWriter, r *http.Request) {
	var req ingredientToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	found, err := s.App.Store().Q.SetIngredientStockByName(name, req.InStock)
	if err != nil {
		s.respondInternal(w, "toggle ingredient", err)
		return
	}
	if !found {
		s.respondError(w, http.StatusNotFound, "ingredient not found")
		return
	}
	s.afterStockChange(r)
	s.respond(w, http.StatusOK, map[string]any{"name": name, "in_stock": req.InStock})
}

type bulkStockRequest struct {
	Ingredients []struct {
		ID      int64 `json:"id"`
		InStock bool  `json:"in_stock"`
	} `json:"ingredients"`
}

func (s *Server) IngredientsBulkUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req bulkStockRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Ingredients) == 0 {
		s.respondError(w, http.StatusBadRequest, "ingredients is required")
		return
	}
	items := make([]db.StockUpdateItem, 0, len(req.Ingredients))
	for _, it := range req.Ingredients {
		items = append(items, db.StockUpdateItem{ID: it.ID, InStock: it.InStock})
	}
	if err := s.App.Store().Q.BulkSetIngredientStock(items); err != nil {
		s.respondInternal(w, "bulk update ingredients", err)
		return
	}
	s.afterStockChange(r)
	s.respond(w, http.StatusOK, map[string]any{"updated": len(items)})
}

// afterStockChange drops cached menus and wakes connected inventory views.
// Cocktail availability is derived, so any stock flip can change the menu.
func (s *Server) afterStockChange(r *http.Request) {
	s.App.Cache().Invalidate(r.Context())
	s.App.Events().BroadcastInventory(app.Event{Type: "inventory:changed"})
}
