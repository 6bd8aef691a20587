package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"barback-go/internal/app"
	"barback-go/internal/db"
	"barback-go/internal/menu"
)

type Server struct {
	App *app.App
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.App.Store().Ping(); err != nil {
		s.respondError(w, http.StatusInternalServerError, "db unavailable")
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

/* ---------- JSON helpers ---------- */

func (s *Server) respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.App.Log().Error("encode response", "err", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, msg string) {
	s.respond(w, code, map[string]string{"error": msg})
}

func (s *Server) respondInternal(w http.ResponseWriter, what string, err error) {
	s.App.Log().Error(what, "err", err)
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

var errBadBody = errors.New("invalid request body")

func encodeForCache(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func parseInt64(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

/* ---------- wire shapes ---------- */

type userJSON struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserJSON(u *db.User) userJSON {
	return userJSON{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type orderJSON struct {
	ID           int64     `json:"id"`
	CocktailID   int64     `json:"cocktailId"`
	CocktailName string    `json:"cocktailName"`
	CustomerID   int64     `json:"customerId"`
	CustomerName string    `json:"customerName"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toOrderJSON(o *db.Order) orderJSON {
	return orderJSON{
		ID:           o.ID,
		CocktailID:   o.CocktailID,
		CocktailName: o.CocktailName,
		CustomerID:   o.UserID,
		CustomerName: o.Username,
		Status:       o.Status,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

type ingredientJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	InStock  bool   `json:"in_stock"`
}

func toIngredientJSON(i *db.Ingredient) ingredientJSON {
	return ingredientJSON{ID: i.ID, Name: i.Name, Category: i.Category, InStock: i.InStock}
}

func toCocktailJSON(c *db.Cocktail) menu.Cocktail {
	lines := make([]menu.IngredientLine, 0, len(c.Ingredients))
	for _, l := range c.Ingredients {
		lines = append(lines, menu.IngredientLine{
			Name:     l.Name,
			Quantity: l.Quantity,
			Category: l.Category,
			InStock:  l.InStock,
		})
	}
	return menu.Cocktail{
		ID:          c.ID,
		Name:        c.Name,
		Image:       c.Image,
		Available:   c.Available,
		Ingredients: lines,
	}
}
