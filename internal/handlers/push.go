package handlers

import "net/http"

func (s *Server) PushPublicKeyGet(w http.ResponseWriter, r *http.Request) {
	key := s.App.Push().PublicKey()
	if key == "" {
		s.respondError(w, http.StatusNotFound, "push notifications are not configured")
		return
	}
	s.respond(w, http.StatusOK, map[string]string{"publicKey": key})
}

type pushSubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (s *Server) PushSubscribePost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	var req pushSubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		s.respondError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}
	if err := s.App.Store().Q.UpsertPushSubscription(u.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		s.respondInternal(w, "save push subscription", err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}
