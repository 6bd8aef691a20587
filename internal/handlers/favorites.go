package handlers

import "net/http"

func (s *Server) FavoritesGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	ids, err := s.App.Store().Q.ListFavoriteIDs(u.ID)
	if err != nil {
		s.respondInternal(w, "list favorites", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"ids": ids})
}

type favoritesPutRequest struct {
	IDs []int64 `json:"ids"`
}

// FavoritesPut replaces the caller's favorite set wholesale. Clients debounce
// and always send their full local set, so last write wins is the right model.
func (s *Server) FavoritesPut(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	var req favoritesPutRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IDs == nil {
		req.IDs = []int64{}
	}
	if err := s.App.Store().Q.ReplaceFavorites(u.ID, req.IDs); err != nil {
		s.respondInternal(w, "save favorites", err)
		return
	}
	ids, err := s.App.Store().Q.ListFavoriteIDs(u.ID)
	if err != nil {
		s.respondInternal(w, "list favorites", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"ids": ids})
}
