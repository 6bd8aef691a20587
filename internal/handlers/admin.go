package handlers

import (
	"net/http"
	"strconv"

	"barback-go/internal/app"
)

func (s *Server) StatsGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.App.Store().Q.GetStats()
	if err != nil {
		s.respondInternal(w, "load stats", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"totalOrders":        st.TotalOrders,
		"ordersByStatus":     st.OrdersByStatus,
		"totalCocktails":     st.TotalCocktails,
		"availableCocktails": st.AvailableCocktails,
		"totalIngredients":   st.TotalIngredients,
		"ingredientsInStock": st.IngredientsInStock,
		"totalUsers":         st.TotalUsers,
	})
}

func (s *Server) PopularCocktailsGet(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	list, err := s.App.Store().Q.ListPopularCocktails(limit)
	if err != nil {
		s.respondInternal(w, "list popular cocktails", err)
		return
	}
	type popularJSON struct {
		CocktailID int64  `json:"cocktailId"`
		Name       string `json:"name"`
		OrderCount int64  `json:"orderCount"`
	}
	out := make([]popularJSON, 0, len(list))
	for _, p := range list {
		out = append(out, popularJSON{CocktailID: p.CocktailID, Name: p.Name, OrderCount: p.OrderCount})
	}
	s.respond(w, http.StatusOK, out)
}

type toggleAvailabilityRequest struct {
	CocktailIDs []int64 `json:"cocktailIds"`
	Available   bool    `json:"available"`
}

func (s *Server) ToggleAvailabilityPost(w http.ResponseWriter, r *http.Request) {
	var req toggleAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CocktailIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "cocktailIds is required")
		return
	}
	if err := s.App.Store().Q.SetCocktailsEnabled(req.CocktailIDs, req.Available); err != nil {
		s.respondInternal(w, "toggle cocktails", err)
		return
	}
	s.App.Cache().Invalidate(r.Context())
	s.App.Events().BroadcastInventory(app.Event{Type: "inventory:changed"})
	s.respond(w, http.StatusOK, map[string]any{"updated": len(req.CocktailIDs), "available": req.Available})
}
