package db

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Ingredient struct {
	ID        int64
	Name      string
	Category  string
	InStock   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Cocktail struct {
	ID        int64
	Name      string
	Image     string
	IsEnabled bool
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time

	Ingredients []IngredientLine
}

// IngredientLine is one ordered recipe line; name/category/in_stock are
// denormalized from the ingredient at read time.
type IngredientLine struct {
	ID           int64
	CocktailID   int64
	IngredientID int64
	Quantity     string
	Position     int64

	Name     string
	Category string
	InStock  bool
}

type Order struct {
	ID         int64
	UserID     int64
	CocktailID int64
	Notes      string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Username      string
	CocktailName  string
	CocktailImage string
}

type OrderEvent struct {
	ID              int64
	OrderID         int64
	FromStatus      string
	ToStatus        string
	ChangedByUserID *int64
	ChangedByName   string
	CreatedAt       time.Time
}

type PushSubscription struct {
	ID        int64
	UserID    int64
	Endpoint  string
	P256dh    string
	Auth      string
	CreatedAt time.Time
}

/* ---------- parameter structs ---------- */

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

type CreateIngredientParams struct {
	Name     string
	Category string
	InStock  bool
}

type StockUpdateItem struct {
	ID      int64
	InStock bool
}

type CreateCocktailParams struct {
	Name      string
	Image     string
	IsEnabled bool
}

type UpdateCocktailParams struct {
	ID        int64
	Name      string
	Image     string
	IsEnabled bool
}

// LineUpsertItem is one recipe line in save order.
type LineUpsertItem struct {
	IngredientID int64
	Quantity     string
}

type CreateOrderParams struct {
	UserID     int64
	CocktailID int64
	Notes      string
}

type Stats struct {
	TotalOrders        int64
	OrdersByStatus     map[string]int64
	TotalCocktails     int64
	AvailableCocktails int64
	TotalIngredients   int64
	IngredientsInStock int64
	TotalUsers         int64
}

type PopularCocktail struct {
	CocktailID int64
	Name       string
	OrderCount int64
}
