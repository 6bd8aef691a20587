package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"barback-go/internal/app"
	"barback-go/internal/db"

	"github.com/go-chi/chi/v5"
)

const maxOrderNotes = 100

// allowedTransition is the only path an order may take. Staff move orders
// forward one step at a time; cancellation is open until the order is done.
func allowedTransition(from, to string) bool {
	switch from {
	case "pending":
		return to == "preparing" || to == "cancelled"
	case "preparing":
		return to == "ready" || to == "cancelled"
	case "ready":
		return to == "completed" || to == "cancelled"
	}
	return false
}

func validOrderStatus(s string) bool {
	switch s {
	case "pending", "preparing", "ready", "completed", "cancelled":
		return true
	}
	return false
}

type orderCreateRequest struct {
	CocktailID int64  `json:"cocktailId"`
	Notes      string `json:"notes"`
}

func (s *Server) OrderCreatePost(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	var req orderCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	notes := strings.TrimSpace(req.Notes)
	// Count characters, not bytes; accented notes are the norm here.
	if utf8.RuneCountInString(notes) > maxOrderNotes {
		s.respondError(w, http.StatusBadRequest, "notes must be 100 characters or fewer")
		return
	}
	c, err := s.App.Store().Q.GetCocktailByID(req.CocktailID)
	if err != nil {
		s.respondInternal(w, "load cocktail", err)
		return
	}
	if c == nil {
		s.respondError(w, http.StatusNotFound, "cocktail not found")
		return
	}
	if !c.Available {
		s.respondError(w, http.StatusConflict, "cocktail is not available")
		return
	}
	id, err := s.App.Store().Q.CreateOrder(db.CreateOrderParams{
		UserID: u.ID, CocktailID: c.ID, Notes: notes,
	})
	if err != nil {
		s.respondInternal(w, "create order", err)
		return
	}
	o, err := s.App.Store().Q.GetOrderByID(id)
	if err != nil || o == nil {
		s.respondInternal(w, "reload order", err)
		return
	}
	s.App.Events().BroadcastOrders(app.Event{Type: "order:created", Data: toOrderJSON(o)})
	s.App.Events().BroadcastUser(u.ID, app.Event{Type: "order:created", Data: toOrderJSON(o)})
	s.respond(w, http.StatusCreated, toOrderJSON(o))
}

func (s *Server) OrdersGet(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !validOrderStatus(status) {
		s.respondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	list, err := s.App.Store().Q.ListOrders(status)
	if err != nil {
		s.respondInternal(w, "list orders", err)
		return
	}
	out := make([]orderJSON, 0, len(list))
	for i := range list {
		out = append(out, toOrderJSON(&list[i]))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) MyOrdersGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	list, err := s.App.Store().Q.ListOrdersForUser(u.ID)
	if err != nil {
		s.respondInternal(w, "list orders", err)
		return
	}
	out := make([]orderJSON, 0, len(list))
	for i := range list {
		out = append(out, toOrderJSON(&list[i]))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) OrderGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	if o.UserID != u.ID && u.Role != app.RoleAdmin {
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	s.respond(w, http.StatusOK, toOrderJSON(o))
}

type orderPatchRequest struct {
	Status string `json:"status"`
}

func (s *Server) OrderPatch(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	var req orderPatchRequest
	if err := decodeJSON(r, &req); err != nil || !validOrderStatus(req.Status) {
		s.respondError(w, http.StatusBadRequest, "unknown status")
		return
	}
	// customers may only cancel their own pending orders
	if u.Role != app.RoleAdmin {
		if o.UserID != u.ID || req.Status != "cancelled" || o.Status != "pending" {
			s.respondError(w, http.StatusForbidden, "forbidden")
			return
		}
	}
	if !allowedTransition(o.Status, req.Status) {
		s.respondError(w, http.StatusConflict, "cannot change status from "+o.Status+" to "+req.Status)
		return
	}
	changedBy := u.ID
	if err := s.App.Store().Q.UpdateOrderStatus(o.ID, o.Status, req.Status, &changedBy); err != nil {
		if errors.Is(err, db.ErrStaleStatus) {
			s.respondError(w, http.StatusConflict, "order status changed, reload and retry")
			return
		}
		s.respondInternal(w, "update order", err)
		return
	}
	o, err := s.App.Store().Q.GetOrderByID(o.ID)
	if err != nil || o == nil {
		s.respondInternal(w, "reload order", err)
		return
	}
	s.App.Events().BroadcastOrders(app.Event{Type: "order:updated", Data: toOrderJSON(o)})
	s.App.Events().BroadcastUser(o.UserID, app.Event{Type: "order:updated", Data: toOrderJSON(o)})
	if o.Status == "ready" {
		s.App.Push().NotifyUser(o.UserID, "Commande prête", o.CocktailName+" est prêt au bar")
	}
	s.respond(w, http.StatusOK, toOrderJSON(o))
}

func (s *Server) OrderDelete(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	if u.Role != app.RoleAdmin && (o.UserID != u.ID || o.Status != "pending") {
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := s.App.Store().Q.DeleteOrder(o.ID); err != nil {
		s.respondInternal(w, "delete order", err)
		return
	}
	s.App.Events().BroadcastOrders(app.Event{Type: "order:deleted", Data: map[string]any{"id": o.ID}})
	s.respond(w, http.StatusOK, map[string]any{"deleted": o.ID})
}

func (s *Server) OrdersDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.App.Store().Q.DeleteAllOrders()
	if err != nil {
		s.respondInternal(w, "delete orders", err)
		return
	}
	s.App.Events().BroadcastOrders(app.Event{Type: "orders:cleared"})
	s.respond(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) OrderEventsGet(w http.ResponseWriter, r *http.Request) {
	u := s.App.CurrentUser(r)
	o, ok := s.loadOrder(w, r)
	if !ok {
		return
	}
	if o.UserID != u.ID && u.Role != app.RoleAdmin {
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	events, err := s.App.Store().Q.ListOrderEvents(o.ID)
	if err != nil {
		s.respondInternal(w, "list order events", err)
		return
	}
	type eventJSON struct {
		FromStatus string `json:"fromStatus"`
		ToStatus   string `json:"toStatus"`
		ChangedBy  string `json:"changedBy,omitempty"`
		CreatedAt  string `json:"createdAt"`
	}
	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, eventJSON{
			FromStatus: ev.FromStatus,
			ToStatus:   ev.ToStatus,
			ChangedBy:  ev.ChangedByName,
			CreatedAt:  ev.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) loadOrder(w http.ResponseWriter, r *http.Request) (*db.Order, bool) {
	id, ok := parseInt64(chi.URLParam(r, "id"))
	if !ok {
		s.respondError(w, http.StatusBadRequest, "invalid order id")
		return nil, false
	}
	o, err := s.App.Store().Q.GetOrderByID(id)
	if err != nil {
		s.respondInternal(w, "load order", err)
		return nil, false
	}
	if o == nil {
		s.respondError(w, http.StatusNotFound, "order not found")
		return nil, false
	}
	return o, true
}
