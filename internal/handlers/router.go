package handlers

import (
	"net/http"
	"time"

	"barback-go/internal/app"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route. main and the tests share it so the surface
// under test is the one that ships.
func NewRouter(a *app.App) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(a.MiddlewareLoadCurrentUser)

	h := &Server{App: a}

	// Public
	r.Get("/health", h.Health)
	r.Post("/auth/register", h.RegisterPost)
	r.Post("/auth/login", h.LoginPost)
	r.Post("/auth/reset-password", h.ResetPasswordPost)

	r.Get("/cocktails", h.CocktailsGet)
	r.Get("/cocktails/{id}", h.CocktailGet)
	r.Get("/push/public-key", h.PushPublicKeyGet)

	// Authenticated common
	r.Group(func(ar chi.Router) {
		ar.Use(a.RequireAuth)

		ar.Get("/auth/me", h.MeGet)

		ar.Post("/orders", h.OrderCreatePost)
		ar.Get("/orders/my", h.MyOrdersGet)
		ar.Get("/orders/{id}", h.OrderGet)
		ar.Patch("/orders/{id}", h.OrderPatch)
		ar.Delete("/orders/{id}", h.OrderDelete)
		ar.Get("/orders/{id}/events", h.OrderEventsGet)

		ar.Get("/users/me/favorites", h.FavoritesGet)
		ar.Put("/users/me/favorites", h.FavoritesPut)

		ar.Post("/push/subscribe", h.PushSubscribePost)

		ar.Get("/events", h.SSEGet)
	})

	// Staff
	r.Group(func(sr chi.Router) {
		sr.Use(a.RequireRole(app.RoleAdmin))

		sr.Post("/cocktails", h.CocktailCreatePost)
		sr.Patch("/cocktails/{id}", h.CocktailPatch)
		sr.Delete("/cocktails/{id}", h.CocktailDelete)

		sr.Get("/ingredients", h.IngredientsGet)
		sr.Post("/ingredients", h.IngredientCreatePost)
		sr.Patch("/ingredients/{id}", h.IngredientPatch)
		sr.Post("/ingredients/toggle", h.IngredientTogglePost)
		sr.Post("/ingredients/bulk-update", h.IngredientsBulkUpdatePost)

		sr.Get("/orders", h.OrdersGet)
		sr.Delete("/orders", h.OrdersDeleteAll)

		sr.Get("/users", h.UsersGet)
		sr.Patch("/users/{id}", h.UserPatch)
		sr.Delete("/users/{id}", h.UserDelete)
		sr.Post("/users/{id}/reset-password", h.UserResetPasswordPost)

		sr.Get("/admin/stats", h.StatsGet)
		sr.Get("/admin/cocktails/popular", h.PopularCocktailsGet)
		sr.Post("/admin/cocktails/toggle-availability", h.ToggleAvailabilityPost)
	})

	return r
}
