// Package client is a typed HTTP client for the barback API. It is what the
// view-model packages talk to: menu.Derive consumes its cocktail lists and
// favorites.Store uses it as the sync port behind the debounced push.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"barback-go/internal/menu"
	"barback-go/internal/recipe"
)

// ErrUnauthorized is returned on any 401. The client drops its token so the
// caller can route back to login.
var ErrUnauthorized = errors.New("unauthorized")

// APIError carries the server's error payload for non-2xx responses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// NewIngredientsError is the 409 a recipe save returns when the payload names
// ingredients the catalog does not know yet. Resubmit with confirm set to
// create them.
type NewIngredientsError struct {
	Names []string
}

func (e *NewIngredientsError) Error() string {
	return fmt.Sprintf("api: %d ingredients need confirmation", len(e.Names))
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.SetToken("")
		return ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var payload struct {
			Error          string   `json:"error"`
			NewIngredients []string `json:"newIngredients"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if resp.StatusCode == http.StatusConflict && len(payload.NewIngredients) > 0 {
			return &NewIngredientsError{Names: payload.NewIngredients}
		}
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

/* ---------- auth ---------- */

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"username": username, "email": email, "password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp.User, nil
}

func (c *Client) Login(ctx context.Context, identifier, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": identifier, "password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Logout() {
	c.SetToken("")
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", map[string]string{
		"token": token, "password": password,
	}, nil)
}

/* ---------- cocktails ---------- */

func (c *Client) Cocktails(ctx context.Context, onlyAvailable *bool) ([]menu.Cocktail, error) {
	path := "/cocktails"
	if onlyAvailable != nil {
		path += "?available=" + strconv.FormatBool(*onlyAvailable)
	}
	var out []menu.Cocktail
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Cocktail(ctx context.Context, id int64) (*menu.Cocktail, error) {
	var out menu.Cocktail
	if err := c.do(ctx, http.MethodGet, "/cocktails/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type cocktailSaveRequest struct {
	recipe.Draft
	ConfirmNewIngredients bool `json:"confirmNewIngredients"`
}

func (c *Client) CreateCocktail(ctx context.Context, d recipe.Draft, confirm bool) (*menu.Cocktail, error) {
	var out menu.Cocktail
	err := c.do(ctx, http.MethodPost, "/cocktails", cocktailSaveRequest{Draft: d, ConfirmNewIngredients: confirm}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCocktail(ctx context.Context, id int64, d recipe.Draft, confirm bool) (*menu.Cocktail, error) {
	var out menu.Cocktail
	err := c.do(ctx, http.MethodPatch, "/cocktails/"+strconv.FormatInt(id, 10),
		cocktailSaveRequest{Draft: d, ConfirmNewIngredients: confirm}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCocktail(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/cocktails/"+strconv.FormatInt(id, 10), nil, nil)
}

/* ---------- ingredients ---------- */

type Ingredient struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	InStock  bool   `json:"in_stock"`
}

func (c *Client) Ingredients(ctx context.Context) ([]Ingredient, error) {
	var out []Ingredient
	if err := c.do(ctx, http.MethodGet, "/ingredients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateIngredient(ctx context.Context, name, category string, inStock bool) (*Ingredient, error) {
	var out Ingredient
	err := c.do(ctx, http.MethodPost, "/ingredients", map[string]any{
		"name": name, "category": category, "in_stock": inStock,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetIngredientStock(ctx context.Context, id int64, inStock bool) error {
	return c.do(ctx, http.MethodPatch, "/ingredients/"+strconv.FormatInt(id, 10),
		map[string]bool{"in_stock": inStock}, nil)
}

func (c *Client) ToggleIngredientByName(ctx context.Context, name string, inStock bool) error {
	return c.do(ctx, http.MethodPost, "/ingredients/toggle", map[string]any{
		"name": name, "in_stock": inStock,
	}, nil)
}

type StockUpdate struct {
	ID      int64 `json:"id"`
	InStock bool  `json:"in_stock"`
}

func (c *Client) BulkUpdateStock(ctx context.Context, items []StockUpdate) error {
	return c.do(ctx, http.MethodPost, "/ingredients/bulk-update", map[string]any{"ingredients": items}, nil)
}

/* ---------- orders ---------- */

type Order struct {
	ID           int64  `json:"id"`
	CocktailID   int64  `json:"cocktailId"`
	CocktailName string `json:"cocktailName"`
	CustomerID   int64  `json:"customerId"`
	CustomerName string `json:"customerName"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func (c *Client) CreateOrder(ctx context.Context, cocktailID int64, notes string) (*Order, error) {
	var out Order
	err := c.do(ctx, http.MethodPost, "/orders", map[string]any{
		"cocktailId": cocktailID, "notes": notes,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Orders(ctx context.Context, status string) ([]Order, error) {
	path := "/orders"
	if status != "" {
		path += "?status=" + status
	}
	var out []Order
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/orders/my", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

const myOrdersPollInterval = 10 * time.Second

// WatchMyOrders fetches the caller's orders immediately and then on a fixed
// interval, handing each snapshot to fn. Fetch errors are skipped; the next
// tick retries. Cancelling ctx is the only way to stop the poll.
func (c *Client) WatchMyOrders(ctx context.Context, fn func([]Order)) {
	c.watchMyOrders(ctx, myOrdersPollInterval, fn)
}

func (c *Client) watchMyOrders(ctx context.Context, every time.Duration, fn func([]Order)) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		if orders, err := c.MyOrders(ctx); err == nil {
			fn(orders)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*Order, error) {
	var out Order
	err := c.do(ctx, http.MethodPatch, "/orders/"+strconv.FormatInt(id, 10),
		map[string]string{"status": status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) DeleteAllOrders(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/orders", nil, nil)
}

/* ---------- users (admin) ---------- */

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetUserRole(ctx context.Context, id int64, role string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+strconv.FormatInt(id, 10),
		map[string]string{"role": role}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(id, 10), nil, nil)
}

// IssuePasswordReset mints a reset token for the target user and returns it.
func (c *Client) IssuePasswordReset(ctx context.Context, id int64) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/users/"+strconv.FormatInt(id, 10)+"/reset-password", nil, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

/* ---------- admin dashboard ---------- */

type Stats struct {
	TotalOrders        int64            `json:"totalOrders"`
	OrdersByStatus     map[string]int64 `json:"ordersByStatus"`
	TotalCocktails     int64            `json:"totalCocktails"`
	AvailableCocktails int64            `json:"availableCocktails"`
	TotalIngredients   int64            `json:"totalIngredients"`
	IngredientsInStock int64            `json:"ingredientsInStock"`
	TotalUsers         int64            `json:"totalUsers"`
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type PopularCocktail struct {
	CocktailID int64  `json:"cocktailId"`
	Name       string `json:"name"`
	OrderCount int64  `json:"orderCount"`
}

func (c *Client) PopularCocktails(ctx context.Context, limit int) ([]PopularCocktail, error) {
	path := "/admin/cocktails/popular"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []PopularCocktail
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ToggleCocktailAvailability(ctx context.Context, ids []int64, available bool) error {
	return c.do(ctx, http.MethodPost, "/admin/cocktails/toggle-availability", map[string]any{
		"cocktailIds": ids, "available": available,
	}, nil)
}

/* ---------- favorites ---------- */

func (c *Client) Favorites(ctx context.Context) ([]int64, error) {
	var out struct {
		IDs []int64 `json:"ids"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// PushFavorites satisfies favorites.SyncPort.
func (c *Client) PushFavorites(ctx context.Context, ids []int64) error {
	return c.do(ctx, http.MethodPut, "/users/me/favorites", map[string]any{"ids": ids}, nil)
}

/* ---------- push ---------- */

func (c *Client) SubscribePush(ctx context.Context, endpoint, p256dh, auth string) error {
	return c.do(ctx, http.MethodPost, "/push/subscribe", map[string]any{
		"endpoint": endpoint,
		"keys":     map[string]string{"p256dh": p256dh, "auth": auth},
	}, nil)
}
