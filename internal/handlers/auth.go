package handlers

import (
	"net/http"
	"strings"

	"barback-go/internal/app"
	"barback-go/internal/db"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  userJSON `json:"user"`
	Token string   `json:"token"`
}

func (s *Server) RegisterPost(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	email := app.NormalizeEmail(req.Email)
	if req.Username == "" {
		s.respondError(w, http.StatusBadRequest, "username is required")
		return
	}
	if email == "" || !strings.Contains(email, "@") {
		s.respondError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	hash, err := app.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if u, _ := s.App.Store().Q.GetUserByUsername(req.Username); u != nil {
		s.respondError(w, http.StatusConflict, "username already taken")
		return
	}
	if u, _ := s.App.Store().Q.GetUserByEmail(email); u != nil {
		s.respondError(w, http.StatusConflict, "email already registered")
		return
	}

	id, err := s.App.Store().Q.CreateUser(db.CreateUserParams{
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         app.RoleUser,
	})
	if err != nil {
		s.respondInternal(w, "create user", err)
		return
	}

	u, err := s.App.Store().Q.GetUserByID(id)
	if err != nil || u == nil {
		s.respondInternal(w, "load user", err)
		return
	}
	token, err := s.App.IssueToken(u.ID, u.Role)
	if err != nil {
		s.respondInternal(w, "issue token", err)
		return
	}
	s.respond(w, http.StatusCreated, authResponse{User: toUserJSON(u), Token: token})
}

func (s *Server) LoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident := strings.TrimSpace(req.Username)
	if ident == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	// Username or email both work as login identifier.
	u, err := s.App.Store().Q.GetUserByUsername(ident)
	if err != nil {
		s.respondInternal(w, "load user", err)
		return
	}
	if u == nil {
		u, err = s.App.Store().Q.GetUserByEmail(app.NormalizeEmail(ident))
		if err != nil {
			s.respondInternal(w, "load user", err)
			return
		}
	}
	if u == nil || !app.CheckPassword(u.PasswordHash, req.Password) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.App.IssueToken(u.ID, u.Role)
	if err != nil {
		s.respondInternal(w, "issue token", err)
		return
	}
	s.respond(w, http.StatusOK, authResponse{User: toUserJSON(u), Token: token})
}

func (s *Server) MeGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	if u == nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	s.respond(w, http.StatusOK, map[string]userJSON{"user": toUserJSON(u)})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ResetPasswordPost consumes a one-time token issued by an admin and sets a
// new password for the token's user.
func (s *Server) ResetPasswordPost(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		s.respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	hash, err := app.HashPassword(req.Password)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	uid, err := s.App.Store().Q.ConsumePasswordReset(req.Token)
	if err != nil {
		s.respondInternal(w, "consume reset token", err)
		return
	}
	if uid == 0 {
		s.respondError(w, http.StatusBadRequest, "invalid or expired token")
		return
	}

	if err := s.App.Store().Q.SetUserPassword(uid, hash); err != nil {
		s.respondInternal(w, "set password", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"ok": true})
}
