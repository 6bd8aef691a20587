package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Queries struct {
	db *sql.DB
}

func unixNow() int64 { return time.Now().Unix() }

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func i2b(i int) bool { return i != 0 }

func tFromUnix(u int64) time.Time {
	if u <= 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// availableExpr computes cocktail availability: enabled AND every recipe line's
// ingredient is in stock. A recipe with no lines counts as available.
func availableExpr() string {
	return `(CASE
		WHEN COALESCE(c.is_enabled,0) = 0 THEN 0
		WHEN EXISTS (
			SELECT 1
			FROM cocktail_ingredients ci
			JOIN ingredients i ON i.id = ci.ingredient_id
			WHERE ci.cocktail_id = c.id
			  AND i.in_stock = 0
		) THEN 0
		ELSE 1
	END)`
}

/* ---------------- Users ---------------- */

func (q *Queries) HasAnyAdmin() (bool, error) {
	row := q.db.QueryRow(`SELECT COUNT(1) FROM users WHERE role='admin'`)
	var n int
	if err := row.Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *Queries) scanUser(row *sql.Row) (*User, error) {
	var u User
	var ca, ua int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &ca, &ua); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = tFromUnix(ca)
	u.UpdatedAt = tFromUnix(ua)
	return &u, nil
}

func (q *Queries) GetUserByID(id int64) (*User, error) {
	return q.scanUser(q.db.QueryRow(`
		SELECT id,username,email,password_hash,role,created_at,updated_at
		FROM users WHERE id=?`, id))
}

func (q *Queries) GetUserByEmail(email string) (*User, error) {
	return q.scanUser(q.db.QueryRow(`
		SELECT id,username,email,password_hash,role,created_at,updated_at
		FROM users WHERE email=?`, email))
}

func (q *Queries) GetUserByUsername(username string) (*User, error) {
	return q.scanUser(q.db.QueryRow(`
		SELECT id,username,email,password_hash,role,created_at,updated_at
		FROM users WHERE username=?`, username))
}

func (q *Queries) ListUsers() ([]User, error) {
	rows, err := q.db.Query(`
		SELECT id,username,email,password_hash,role,created_at,updated_at
		FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var ca, ua int64
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &ca, &ua); err != nil {
			return nil, err
		}
		u.CreatedAt = tFromUnix(ca)
		u.UpdatedAt = tFromUnix(ua)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (q *Queries) CreateUser(p CreateUserParams) (int64, error) {
	res, err := q.db.Exec(`
		INSERT INTO users(username,email,password_hash,role,created_at,updated_at)
		VALUES(?,?,?,?,?,?)`,
		p.Username, p.Email, p.PasswordHash, p.Role, unixNow(), unixNow())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) SetUserRole(id int64, role string) error {
	_, err := q.db.Exec(`UPDATE users SET role=?, updated_at=? WHERE id=?`, role, unixNow(), id)
	return err
}

func (q *Queries) SetUserPassword(id int64, hash string) error {
	_, err := q.db.Exec(`UPDATE users SET password_hash=?, updated_at=? WHERE id=?`, hash, unixNow(), id)
	return err
}

func (q *Queries) DeleteUser(id int64) error {
	_, err := q.db.Exec(`DELETE FROM users WHERE id=?`, id)
	return err
}

/* ---------------- Ingredients ---------------- */

func (q *Queries) ListIngredients() ([]Ingredient, error) {
	rows, err := q.db.Query(`
		SELECT id,name,category,in_stock,created_at,updated_at
		FROM ingredients ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ingredient
	for rows.Next() {
		var ing Ingredient
		var inStock int
		var ca, ua int64
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Category, &inStock, &ca, &ua); err != nil {
			return nil, err
		}
		ing.InStock = i2b(inStock)
		ing.CreatedAt = tFromUnix(ca)
		ing.UpdatedAt = tFromUnix(ua)
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (q *Queries) GetIngredientByID(id int64) (*Ingredient, error) {
	row := q.db.QueryRow(`
		SELECT id,name,category,in_stock,created_at,updated_at
		FROM ingredients WHERE id=?`, id)
	return scanIngredient(row)
}

// GetIngredientByName matches trimmed, case-insensitively (NOCASE column).
func (q *Queries) GetIngredientByName(name string) (*Ingredient, error) {
	row := q.db.QueryRow(`
		SELECT id,name,category,in_stock,created_at,updated_at
		FROM ingredients WHERE name=?`, strings.TrimSpace(name))
	return scanIngredient(row)
}

func scanIngredient(row *sql.Row) (*Ingredient, error) {
	var ing Ingredient
	var inStock int
	var ca, ua int64
	if err := row.Scan(&ing.ID, &ing.Name, &ing.Category, &inStock, &ca, &ua); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	ing.InStock = i2b(inStock)
	ing.CreatedAt = tFromUnix(ca)
	ing.UpdatedAt = tFromUnix(ua)
	return &ing, nil
}

func (q *Queries) CreateIngredient(p CreateIngredientParams) (int64, error) {
	res, err := q.db.Exec(`
		INSERT INTO ingredients(name,category,in_stock,created_at,updated_at)
		VALUES(?,?,?,?,?)`,
		strings.TrimSpace(p.Name), p.Category, b2i(p.InStock), unixNow(), unixNow())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) SetIngredientStock(id int64, inStock bool) error {
	_, err := q.db.Exec(`UPDATE ingredients SET in_stock=?, updated_at=? WHERE id=?`, b2i(inStock), unixNow(), id)
	return err
}

func (q *Queries) SetIngredientStockByName(name string, inStock bool) (bool, error) {
	res, err := q.db.Exec(`UPDATE ingredients SET in_stock=?, updated_at=? WHERE name=?`,
		b2i(inStock), unixNow(), strings.TrimSpace(name))
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (q *Queries) BulkSetIngredientStock(items []StockUpdateItem) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(`UPDATE ingredients SET in_stock=?, updated_at=? WHERE id=?`,
			b2i(it.InStock), unixNow(), it.ID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

/* ---------------- Cocktails ---------------- */

func (q *Queries) GetCocktailByID(id int64) (*Cocktail, error) {
	row := q.db.QueryRow(fmt.Sprintf(`
		SELECT
			c.id,
			COALESCE(c.name,''),
			COALESCE(c.image,''),
			COALESCE(c.is_enabled,0),
			%s AS available,
			c.created_at,c.updated_at
		FROM cocktails c WHERE c.id=?`, availableExpr()), id)

	var c Cocktail
	var enabled, avail int
	var ca, ua int64
	if err := row.Scan(&c.ID, &c.Name, &c.Image, &enabled, &avail, &ca, &ua); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.IsEnabled = i2b(enabled)
	c.Available = i2b(avail)
	c.CreatedAt = tFromUnix(ca)
	c.UpdatedAt = tFromUnix(ua)

	lines, err := q.GetCocktailLines(c.ID)
	if err != nil {
		return nil, err
	}
	c.Ingredients = lines
	return &c, nil
}

func (q *Queries) GetCocktailByName(name string) (*Cocktail, error) {
	row := q.db.QueryRow(`SELECT id FROM cocktails WHERE name=?`, strings.TrimSpace(name))
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return q.GetCocktailByID(id)
}

// ListCocktails returns every cocktail with computed availability and its
// ordered recipe lines. onlyAvailable filters to available=true when non-nil
// and true, available=false when non-nil and false.
func (q *Queries) ListCocktails(onlyAvailable *bool) ([]Cocktail, error) {
	filter := -1
	if onlyAvailable != nil {
		filter = b2i(*onlyAvailable)
	}
	sqlq := fmt.Sprintf(`
		SELECT * FROM (
			SELECT
				c.id,
				COALESCE(c.name,'') AS name,
				COALESCE(c.image,'') AS image,
				COALESCE(c.is_enabled,0) AS is_enabled,
				%s AS available,
				c.created_at,c.updated_at
			FROM cocktails c
		) WHERE (? < 0 OR available = ?)
		ORDER BY name`, availableExpr())

	rows, err := q.db.Query(sqlq, filter, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cocktail
	for rows.Next() {
		var c Cocktail
		var enabled, avail int
		var ca, ua int64
		if err := rows.Scan(&c.ID, &c.Name, &c.Image, &enabled, &avail, &ca, &ua); err != nil {
			return nil, err
		}
		c.IsEnabled = i2b(enabled)
		c.Available = i2b(avail)
		c.CreatedAt = tFromUnix(ca)
		c.UpdatedAt = tFromUnix(ua)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		lines, err := q.GetCocktailLines(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Ingredients = lines
	}
	return out, nil
}

func (q *Queries) CreateCocktail(p CreateCocktailParams) (int64, error) {
	res, err := q.db.Exec(`
		INSERT INTO cocktails(name,image,is_enabled,created_at,updated_at)
		VALUES(?,?,?,?,?)`,
		strings.TrimSpace(p.Name), p.Image, b2i(p.IsEnabled), unixNow(), unixNow())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateCocktail(p UpdateCocktailParams) error {
	_, err := q.db.Exec(`
		UPDATE cocktails SET name=?, image=?, is_enabled=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(p.Name), p.Image, b2i(p.IsEnabled), unixNow(), p.ID)
	return err
}

func (q *Queries) SetCocktailsEnabled(ids []int64, enabled bool) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE cocktails SET is_enabled=?, updated_at=? WHERE id=?`,
			b2i(enabled), unixNow(), id); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (q *Queries) DeleteCocktail(id int64) error {
	_, err := q.db.Exec(`DELETE FROM cocktails WHERE id=?`, id)
	return err
}

func (q *Queries) GetCocktailLines(cocktailID int64) ([]IngredientLine, error) {
	rows, err := q.db.Query(`
		SELECT
			ci.id,ci.cocktail_id,ci.ingredient_id,COALESCE(ci.quantity,''),ci.position,
			COALESCE(i.name,''),COALESCE(i.category,''),COALESCE(i.in_stock,0)
		FROM cocktail_ingredients ci
		JOIN ingredients i ON i.id = ci.ingredient_id
		WHERE ci.cocktail_id=?
		ORDER BY ci.position, ci.id`, cocktailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IngredientLine
	for rows.Next() {
		var l IngredientLine
		var inStock int
		if err := rows.Scan(&l.ID, &l.CocktailID, &l.IngredientID, &l.Quantity, &l.Position,
			&l.Name, &l.Category, &inStock); err != nil {
			return nil, err
		}
		l.InStock = i2b(inStock)
		out = append(out, l)
	}
	return out, rows.Err()
}

// ReplaceCocktailLines rewrites the recipe; position preserves save order.
func (q *Queries) ReplaceCocktailLines(cocktailID int64, items []LineUpsertItem) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM cocktail_ingredients WHERE cocktail_id=?`, cocktailID); err != nil {
		_ = tx.Rollback()
		return err
	}
	for pos, it := range items {
		if it.IngredientID <= 0 {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO cocktail_ingredients(cocktail_id,ingredient_id,quantity,position)
			VALUES(?,?,?,?)`, cocktailID, it.IngredientID, it.Quantity, pos); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

/* ---------------- Orders ---------------- */

func (q *Queries) CreateOrder(p CreateOrderParams) (int64, error) {
	tx, err := q.db.Begin()
	if err != nil {
		return 0, err
	}
	res, err := tx.Exec(`
		INSERT INTO orders(user_id,cocktail_id,notes,status,created_at,updated_at)
		VALUES(?,?,?,'pending',?,?)`,
		p.UserID, p.CocktailID, p.Notes, unixNow(), unixNow())
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	id, _ := res.LastInsertId()

	if _, err := tx.Exec(`
		INSERT INTO order_events(order_id,from_status,to_status,changed_by_user_id,created_at)
		VALUES(?, '', 'pending', ?, ?)`, id, p.UserID, unixNow()); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	return id, tx.Commit()
}

const orderSelect = `
	SELECT
		o.id,o.user_id,o.cocktail_id,COALESCE(o.notes,''),COALESCE(o.status,''),o.created_at,o.updated_at,
		COALESCE(u.username,''),
		COALESCE(c.name,''),COALESCE(c.image,'')
	FROM orders o
	JOIN users u ON u.id=o.user_id
	JOIN cocktails c ON c.id=o.cocktail_id`

func scanOrder(sc interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var ca, ua int64
	if err := sc.Scan(&o.ID, &o.UserID, &o.CocktailID, &o.Notes, &o.Status, &ca, &ua,
		&o.Username, &o.CocktailName, &o.CocktailImage); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	o.CreatedAt = tFromUnix(ca)
	o.UpdatedAt = tFromUnix(ua)
	return &o, nil
}

func (q *Queries) GetOrderByID(id int64) (*Order, error) {
	return scanOrder(q.db.QueryRow(orderSelect+` WHERE o.id=?`, id))
}

// ListOrders returns orders newest first; status filters when non-empty.
func (q *Queries) ListOrders(status string) ([]Order, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = q.db.Query(orderSelect + ` ORDER BY o.created_at DESC, o.id DESC`)
	} else {
		rows, err = q.db.Query(orderSelect+` WHERE o.status=? ORDER BY o.created_at DESC, o.id DESC`, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (q *Queries) ListOrdersForUser(userID int64) ([]Order, error) {
	rows, err := q.db.Query(orderSelect+` WHERE o.user_id=? ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// ErrStaleStatus means the order moved on since the caller last read it.
var ErrStaleStatus = errors.New("order status changed concurrently")

// UpdateOrderStatus moves an order from -> to, compare-and-swap on the from
// status so concurrent staff actions cannot double-apply a transition.
func (q *Queries) UpdateOrderStatus(orderID int64, from, to string, changedBy *int64) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	res, err := tx.Exec(`UPDATE orders SET status=?, updated_at=? WHERE id=? AND status=?`, to, unixNow(), orderID, from)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return ErrStaleStatus
	}
	_, err = tx.Exec(`
		INSERT INTO order_events(order_id,from_status,to_status,changed_by_user_id,created_at)
		VALUES(?,?,?,?,?)`, orderID, from, to, changedBy, unixNow())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (q *Queries) DeleteOrder(id int64) error {
	_, err := q.db.Exec(`DELETE FROM orders WHERE id=?`, id)
	return err
}

func (q *Queries) DeleteAllOrders() (int64, error) {
	res, err := q.db.Exec(`DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListOrderEvents(orderID int64) ([]OrderEvent, error) {
	rows, err := q.db.Query(`
		SELECT
			e.id,e.order_id,COALESCE(e.from_status,''),COALESCE(e.to_status,''),e.changed_by_user_id,e.created_at,
			COALESCE(u.username,'')
		FROM order_events e
		LEFT JOIN users u ON u.id=e.changed_by_user_id
		WHERE e.order_id=?
		ORDER BY e.created_at ASC, e.id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderEvent
	for rows.Next() {
		var e OrderEvent
		var cb sql.NullInt64
		var ca int64
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &cb, &ca, &e.ChangedByName); err != nil {
			return nil, err
		}
		if cb.Valid {
			e.ChangedByUserID = &cb.Int64
		}
		e.CreatedAt = tFromUnix(ca)
		out = append(out, e)
	}
	return out, rows.Err()
}

/* ---------------- Favorites ---------------- */

func (q *Queries) ListFavoriteIDs(userID int64) ([]int64, error) {
	rows, err := q.db.Query(`SELECT cocktail_id FROM favorites WHERE user_id=? ORDER BY cocktail_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ReplaceFavorites overwrites the user's server-side favorite set. Ids that
// don't reference an existing cocktail are skipped rather than failing the
// whole write.
func (q *Queries) ReplaceFavorites(userID int64, cocktailIDs []int64) error {
	tx, err := q.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM favorites WHERE user_id=?`, userID); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, cid := range cocktailIDs {
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO favorites(user_id,cocktail_id,created_at)
			SELECT ?,?,? WHERE EXISTS (SELECT 1 FROM cocktails WHERE id=?)`,
			userID, cid, unixNow(), cid); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

/* ---------------- Password resets ---------------- */

func (q *Queries) CreatePasswordReset(token string, userID int64, expiresAt time.Time) error {
	_, err := q.db.Exec(`
		INSERT INTO password_resets(token,user_id,expires_at) VALUES(?,?,?)`,
		token, userID, expiresAt.Unix())
	return err
}

// ConsumePasswordReset marks the token used and returns the user it belongs
// to. Returns 0 when the token is unknown, expired, or already used.
func (q *Queries) ConsumePasswordReset(token string) (int64, error) {
	tx, err := q.db.Begin()
	if err != nil {
		return 0, err
	}
	row := tx.QueryRow(`
		SELECT user_id FROM password_resets
		WHERE token=? AND used_at IS NULL AND expires_at > ?`, token, unixNow())
	var uid int64
	if err := row.Scan(&uid); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	if _, err := tx.Exec(`UPDATE password_resets SET used_at=? WHERE token=?`, unixNow(), token); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	return uid, tx.Commit()
}

/* ---------------- Push subscriptions ---------------- */

func (q *Queries) UpsertPushSubscription(userID int64, endpoint, p256dh, auth string) error {
	_, err := q.db.Exec(`
		INSERT INTO push_subscriptions(user_id,endpoint,p256dh,auth,created_at)
		VALUES(?,?,?,?,?)
		ON CONFLICT(endpoint) DO UPDATE SET user_id=excluded.user_id, p256dh=excluded.p256dh, auth=excluded.auth`,
		userID, endpoint, p256dh, auth, unixNow())
	return err
}

func (q *Queries) ListPushSubscriptionsForUser(userID int64) ([]PushSubscription, error) {
	rows, err := q.db.Query(`
		SELECT id,user_id,endpoint,p256dh,auth,created_at
		FROM push_subscriptions WHERE user_id=?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PushSubscription
	for rows.Next() {
		var s PushSubscription
		var ca int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &ca); err != nil {
			return nil, err
		}
		s.CreatedAt = tFromUnix(ca)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q *Queries) DeletePushSubscription(endpoint string) error {
	_, err := q.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint=?`, endpoint)
	return err
}

/* ---------------- Admin ---------------- */

func (q *Queries) GetStats() (*Stats, error) {
	st := &Stats{OrdersByStatus: map[string]int64{}}

	counts := []struct {
		dst *int64
		qry string
	}{
		{&st.TotalOrders, `SELECT COUNT(1) FROM orders`},
		{&st.TotalCocktails, `SELECT COUNT(1) FROM cocktails`},
		{&st.TotalIngredients, `SELECT COUNT(1) FROM ingredients`},
		{&st.IngredientsInStock, `SELECT COUNT(1) FROM ingredients WHERE in_stock=1`},
		{&st.TotalUsers, `SELECT COUNT(1) FROM users`},
	}
	for _, c := range counts {
		if err := q.db.QueryRow(c.qry).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	if err := q.db.QueryRow(fmt.Sprintf(
		`SELECT COUNT(1) FROM cocktails c WHERE %s = 1`, availableExpr())).Scan(&st.AvailableCocktails); err != nil {
		return nil, err
	}

	rows, err := q.db.Query(`SELECT status, COUNT(1) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		st.OrdersByStatus[s] = n
	}
	return st, rows.Err()
}

// ListPopularCocktails ranks cocktails by non-cancelled order count.
func (q *Queries) ListPopularCocktails(limit int) ([]PopularCocktail, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := q.db.Query(`
		SELECT c.id, COALESCE(c.name,''), COUNT(o.id) AS n
		FROM cocktails c
		JOIN orders o ON o.cocktail_id = c.id AND o.status != 'cancelled'
		GROUP BY c.id
		ORDER BY n DESC, c.name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PopularCocktail
	for rows.Next() {
		var p PopularCocktail
		if err := rows.Scan(&p.CocktailID, &p.Name, &p.OrderCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

/* ---------------- Debug ---------------- */

func (q *Queries) DebugCounts() (string, error) {
	type c struct {
		name string
		qry  string
	}
	checks := []c{
		{"users", "SELECT COUNT(1) FROM users"},
		{"ingredients", "SELECT COUNT(1) FROM ingredients"},
		{"cocktails", "SELECT COUNT(1) FROM cocktails"},
		{"orders", "SELECT COUNT(1) FROM orders"},
		{"events", "SELECT COUNT(1) FROM order_events"},
	}
	var parts []string
	for _, it := range checks {
		row := q.db.QueryRow(it.qry)
		var n int
		if err := row.Scan(&n); err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%s=%d", it.name, n))
	}
	return strings.Join(parts, " | "), nil
}
