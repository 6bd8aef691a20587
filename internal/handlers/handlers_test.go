package handlers_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"barback-go/internal/app"
	"barback-go/internal/client"
	"barback-go/internal/handlers"
	"barback-go/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminUsername = "admin"
	adminPassword = "admin-secret-1"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	a, err := app.New(app.Config{
		DBPath:                 ":memory:",
		JWTSecret:              []byte("0123456789abcdef0123456789abcdef"),
		BootstrapAdminUsername: adminUsername,
		BootstrapAdminEmail:    "admin@bar.test",
		BootstrapAdminPassword: adminPassword,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(handlers.NewRouter(a))
	t.Cleanup(srv.Close)
	return srv
}

func adminClient(t *testing.T, srv *httptest.Server) *client.Client {
	t.Helper()
	c := client.New(srv.URL)
	_, err := c.Login(context.Background(), adminUsername, adminPassword)
	require.NoError(t, err)
	return c
}

func customerClient(t *testing.T, srv *httptest.Server, username string) *client.Client {
	t.Helper()
	c := client.New(srv.URL)
	_, err := c.Register(context.Background(), username, username+"@bar.test", "customer-pass-1")
	require.NoError(t, err)
	return c
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	c := client.New(srv.URL)
	u, err := c.Register(ctx, "alice", "alice@bar.test", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "user", u.Role)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	// login by email works too
	c2 := client.New(srv.URL)
	_, err = c2.Login(ctx, "alice@bar.test", "hunter2hunter2")
	require.NoError(t, err)

	c3 := client.New(srv.URL)
	_, err = c3.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	_, err := client.New(srv.URL).Register(ctx, "bob", "bob@bar.test", "hunter2hunter2")
	require.NoError(t, err)

	_, err = client.New(srv.URL).Register(ctx, "bob", "other@bar.test", "hunter2hunter2")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestAnonymousCannotOrder(t *testing.T) {
	srv := newTestServer(t)
	_, err := client.New(srv.URL).CreateOrder(context.Background(), 1, "")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestCustomerCannotUseStaffEndpoints(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := customerClient(t, srv, "carol")

	_, err := c.Ingredients(ctx)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	_, err = c.Stats(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestOrderLifecycle(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)
	cust := customerClient(t, srv, "dave")

	yes := true
	menu, err := cust.Cocktails(ctx, &yes)
	require.NoError(t, err)
	require.NotEmpty(t, menu, "seeded catalog should have available cocktails")

	o, err := cust.CreateOrder(ctx, menu[0].ID, "sans sucre")
	require.NoError(t, err)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, menu[0].Name, o.CocktailName)

	// ready straight from pending is not a legal move
	_, err = admin.UpdateOrderStatus(ctx, o.ID, "ready")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	for _, status := range []string{"preparing", "ready", "completed"} {
		o, err = admin.UpdateOrderStatus(ctx, o.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, o.Status)
	}

	// completed is terminal
	_, err = admin.UpdateOrderStatus(ctx, o.ID, "cancelled")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	mine, err := cust.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "completed", mine[0].Status)
}

func TestCustomerCanOnlyCancelOwnPendingOrder(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)
	cust := customerClient(t, srv, "erin")
	other := customerClient(t, srv, "frank")

	yes := true
	menu, err := cust.Cocktails(ctx, &yes)
	require.NoError(t, err)
	require.NotEmpty(t, menu)

	o, err := cust.CreateOrder(ctx, menu[0].ID, "")
	require.NoError(t, err)

	// another customer cannot touch it
	_, err = other.UpdateOrderStatus(ctx, o.ID, "cancelled")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	// the owner cannot fast-forward it either
	_, err = cust.UpdateOrderStatus(ctx, o.ID, "ready")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	// owner cancels while pending
	o, err = cust.UpdateOrderStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", o.Status)

	// once preparing, cancelling is staff business
	o2, err := cust.CreateOrder(ctx, menu[0].ID, "")
	require.NoError(t, err)
	_, err = admin.UpdateOrderStatus(ctx, o2.ID, "preparing")
	require.NoError(t, err)
	_, err = cust.UpdateOrderStatus(ctx, o2.ID, "cancelled")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestOrderNotesLimit(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	cust := customerClient(t, srv, "gina")

	yes := true
	menu, err := cust.Cocktails(ctx, &yes)
	require.NoError(t, err)
	require.NotEmpty(t, menu)

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'x'
	}
	_, err = cust.CreateOrder(ctx, menu[0].ID, string(long))
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	// The limit is characters, not bytes. 60 accented characters is 120
	// bytes of UTF-8 and must go through.
	accented := strings.Repeat("é", 60)
	o, err := cust.CreateOrder(ctx, menu[0].ID, accented)
	require.NoError(t, err)
	assert.Equal(t, accented, o.Notes)

	_, err = cust.CreateOrder(ctx, menu[0].ID, strings.Repeat("é", 101))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestRecipeSaveConfirmsNewIngredients(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)

	draft := recipe.Draft{
		Name: "Cocktail Maison",
		Ingredients: []recipe.Line{
			{Name: "Rhum blanc", Quantity: "4 cl", Category: "Alcool"},
			{Name: "Sirop de lavande", Quantity: "2 cl", Category: "Sucrant"},
		},
	}

	_, err := admin.CreateCocktail(ctx, draft, false)
	var nie *client.NewIngredientsError
	require.ErrorAs(t, err, &nie)
	assert.Equal(t, []string{"Sirop de lavande"}, nie.Names)

	c, err := admin.CreateCocktail(ctx, draft, true)
	require.NoError(t, err)
	assert.Equal(t, "Cocktail Maison", c.Name)
	require.Len(t, c.Ingredients, 2)
	assert.True(t, c.Available)

	// the confirmed ingredient now exists in the catalog
	ingredients, err := admin.Ingredients(ctx)
	require.NoError(t, err)
	found := false
	for _, ing := range ingredients {
		if ing.Name == "Sirop de lavande" {
			found = true
			assert.Equal(t, "Sucrant", ing.Category)
			assert.True(t, ing.InStock)
		}
	}
	assert.True(t, found)

	// a second save with the same lines needs no confirmation
	draft.Name = "Cocktail Maison II"
	_, err = admin.CreateCocktail(ctx, draft, false)
	require.NoError(t, err)
}

func TestRecipeSaveRejectsInvalidDraft(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)

	_, err := admin.CreateCocktail(ctx, recipe.Draft{Name: "   "}, false)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, err = admin.CreateCocktail(ctx, recipe.Draft{
		Name:        "Sans Rien",
		Ingredients: []recipe.Line{{Name: "   "}},
	}, false)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestStockToggleFlowsIntoAvailability(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)

	_, err := admin.CreateIngredient(ctx, "Liqueur de sureau", "Alcool", true)
	require.NoError(t, err)
	c, err := admin.CreateCocktail(ctx, recipe.Draft{
		Name:        "Sureau Fizz",
		Ingredients: []recipe.Line{{Name: "Liqueur de sureau", Quantity: "3 cl", Category: "Alcool"}},
	}, false)
	require.NoError(t, err)
	require.True(t, c.Available)

	require.NoError(t, admin.ToggleIngredientByName(ctx, "Liqueur de sureau", false))

	got, err := admin.Cocktail(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)

	require.NoError(t, admin.ToggleIngredientByName(ctx, "Liqueur de sureau", true))
	got, err = admin.Cocktail(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)
}

func TestBulkStockUpdate(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)

	ingredients, err := admin.Ingredients(ctx)
	require.NoError(t, err)
	require.True(t, len(ingredients) >= 2)

	updates := []client.StockUpdate{
		{ID: ingredients[0].ID, InStock: false},
		{ID: ingredients[1].ID, InStock: false},
	}
	require.NoError(t, admin.BulkUpdateStock(ctx, updates))

	after, err := admin.Ingredients(ctx)
	require.NoError(t, err)
	for _, ing := range after {
		if ing.ID == ingredients[0].ID || ing.ID == ingredients[1].ID {
			assert.False(t, ing.InStock)
		}
	}

	require.NoError(t, admin.BulkUpdateStock(ctx, []client.StockUpdate{
		{ID: ingredients[0].ID, InStock: true},
		{ID: ingredients[1].ID, InStock: true},
	}))
}

func TestDeleteCocktailRefusedWhileOrdered(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)
	cust := customerClient(t, srv, "mona")

	c, err := admin.CreateCocktail(ctx, recipe.Draft{
		Name:        "Éphémère",
		Ingredients: []recipe.Line{{Name: "Rhum blanc", Quantity: "4 cl", Category: "Alcool"}},
	}, false)
	require.NoError(t, err)

	_, err = cust.CreateOrder(ctx, c.ID, "")
	require.NoError(t, err)

	err = admin.DeleteCocktail(ctx, c.ID)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	// clearing the order history frees the cocktail
	require.NoError(t, admin.DeleteAllOrders(ctx))
	require.NoError(t, admin.DeleteCocktail(ctx, c.ID))

	_, err = admin.Cocktail(ctx, c.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestFavoritesRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	cust := customerClient(t, srv, "hana")

	menu, err := cust.Cocktails(ctx, nil)
	require.NoError(t, err)
	require.True(t, len(menu) >= 2)

	require.NoError(t, cust.PushFavorites(ctx, []int64{menu[0].ID, menu[1].ID, 99999}))

	ids, err := cust.Favorites(ctx)
	require.NoError(t, err)
	// the unknown id is dropped, not stored
	assert.ElementsMatch(t, []int64{menu[0].ID, menu[1].ID}, ids)

	require.NoError(t, cust.PushFavorites(ctx, nil))
	ids, err = cust.Favorites(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAdminUserManagement(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)
	customerClient(t, srv, "ivan")

	users, err := admin.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	var ivanID, adminID int64
	for _, u := range users {
		switch u.Username {
		case "ivan":
			ivanID = u.ID
		case adminUsername:
			adminID = u.ID
		}
	}
	require.NotZero(t, ivanID)
	require.NotZero(t, adminID)

	require.NoError(t, admin.SetUserRole(ctx, ivanID, "admin"))

	// self-demotion is refused
	err = admin.SetUserRole(ctx, adminID, "user")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	// self-deletion too
	err = admin.DeleteUser(ctx, adminID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	require.NoError(t, admin.DeleteUser(ctx, ivanID))
	users, err = admin.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAdminPasswordReset(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)
	customerClient(t, srv, "jules")

	users, err := admin.Users(ctx)
	require.NoError(t, err)
	var julesID int64
	for _, u := range users {
		if u.Username == "jules" {
			julesID = u.ID
		}
	}
	require.NotZero(t, julesID)

	token, err := admin.IssuePasswordReset(ctx, julesID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	anon := client.New(srv.URL)
	require.NoError(t, anon.ResetPassword(ctx, token, "new-password-1"))

	_, err = client.New(srv.URL).Login(ctx, "jules", "new-password-1")
	require.NoError(t, err)
	_, err = client.New(srv.URL).Login(ctx, "jules", "customer-pass-1")
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	// the token is spent
	err = anon.ResetPassword(ctx, token, "another-pass-1")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestStatsAndToggleAvailability(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	admin := adminClient(t, srv)
	cust := customerClient(t, srv, "kira")

	yes := true
	menu, err := cust.Cocktails(ctx, &yes)
	require.NoError(t, err)
	require.NotEmpty(t, menu)
	before := len(menu)

	_, err = cust.CreateOrder(ctx, menu[0].ID, "")
	require.NoError(t, err)

	st, err := admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalOrders)
	assert.Equal(t, int64(1), st.OrdersByStatus["pending"])
	assert.Equal(t, int64(2), st.TotalUsers)

	top, err := admin.PopularCocktails(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, menu[0].ID, top[0].CocktailID)

	// 86 the ordered cocktail
	require.NoError(t, admin.ToggleCocktailAvailability(ctx, []int64{menu[0].ID}, false))
	menu, err = cust.Cocktails(ctx, &yes)
	require.NoError(t, err)
	assert.Len(t, menu, before-1)
}

func TestUnauthorizedClearsClientToken(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := customerClient(t, srv, "lena")
	require.NotEmpty(t, c.Token())

	c.SetToken("not-a-jwt")
	_, err := c.MyOrders(ctx)
	require.True(t, errors.Is(err, client.ErrUnauthorized))
	assert.Empty(t, c.Token())
}
