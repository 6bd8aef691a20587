package handlers

import (
	"net/http"
	"time"

	"barback-go/internal/app"
	"barback-go/internal/db"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const passwordResetTTL = time.Hour

func (s *Server) UsersGet(w http.ResponseWriter, r *http.Request) {
	list, err := s.App.Store().Q.ListUsers()
	if err != nil {
		s.respondInternal(w, "list users", err)
		return
	}
	out := make([]userJSON, 0, len(list))
	for i := range list {
		out = append(out, toUserJSON(&list[i]))
	}
	s.respond(w, http.StatusOK, out)
}

type userPatchRequest struct {
	Role string `json:"role"`
}

func (s *Server) UserPatch(w http.ResponseWriter, r *http.Request) {
	actor := s.App.CurrentUser(r)
	target, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	var req userPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role != app.RoleAdmin && req.Role != app.RoleUser {
		s.respondError(w, http.StatusBadRequest, "unknown role")
		return
	}
	if target.ID == actor.ID && req.Role != app.RoleAdmin {
		s.respondError(w, http.StatusConflict, "cannot remove your own admin role")
		return
	}
	if err := s.App.Store().Q.SetUserRole(target.ID, req.Role); err != nil {
		s.respondInternal(w, "update user", err)
		return
	}
	target.Role = req.Role
	s.respond(w, http.StatusOK, toUserJSON(target))
}

func (s *Server) UserDelete(w http.ResponseWriter, r *http.Request) {
	actor := s.App.CurrentUser(r)
	target, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if target.ID == actor.ID {
		s.respondError(w, http.StatusConflict, "cannot delete your own account")
		return
	}
	if err := s.App.Store().Q.DeleteUser(target.ID); err != nil {
		s.respondInternal(w, "delete user", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"deleted": target.ID})
}

// UserResetPasswordPost mints a one-hour reset token for the target user.
// The token is handed back to the admin, who passes it on out of band.
func (s *Server) UserResetPasswordPost(w http.ResponseWriter, r *http.Request) {
	target, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	token := uuid.NewString()
	expires := time.Now().Add(passwordResetTTL)
	if err := s.App.Store().Q.CreatePasswordReset(token, target.ID, expires); err != nil {
		s.respondInternal(w, "create password reset", err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]any{
		"token":     token,
		"expiresAt": expires.UTC().Format(time.RFC3339),
	})
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (*db.User, bool) {
	id, ok := parseInt64(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid user id")
		return nil, false
	}
	u, err := s.App.Store().Q.GetUserByID(id)
	if err != nil {
		s.respondInternal(w, "load user", err)
		return nil, false
	}
	if u == nil {
		s.respondError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return u, true
}
