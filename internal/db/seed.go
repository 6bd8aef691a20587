package db

import (
	"database/sql"
	"fmt"
)

type seedIngredient struct {
	Name     string
	Category string
	InStock  bool
}

type seedCocktail struct {
	Name  string
	Image string
	Lines []seedLine
}

type seedLine struct {
	IngredientName string
	Quantity       string
}

func Seed(db *sql.DB) error {
	return SeedCatalog(db)
}

// SeedCatalog fills an empty catalog with a starter menu. Idempotent for
// ingredients and cocktails; existing recipes are never overwritten.
func SeedCatalog(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ingredients := []seedIngredient{
		{Name: "Rhum blanc", Category: "Alcool", InStock: true},
		{Name: "Gin", Category: "Alcool", InStock: true},
		{Name: "Vodka", Category: "Alcool", InStock: true},
		{Name: "Tequila", Category: "Alcool", InStock: true},
		{Name: "Triple sec", Category: "Alcool", InStock: true},
		{Name: "JNPR n°1", Category: "JNPR", InStock: true},

		{Name: "Citron vert", Category: "Fruits", InStock: true},
		{Name: "Jus d'orange", Category: "Fruits", InStock: true},
		{Name: "Jus de cranberry", Category: "Fruits", InStock: true},
		{Name: "Jus d'ananas", Category: "Fruits", InStock: true},

		{Name: "Sirop de sucre", Category: "Sucrant", InStock: true},
		{Name: "Sirop de grenadine", Category: "Sucrant", InStock: true},

		{Name: "Eau gazeuse", Category: "Diluant", InStock: true},
		{Name: "Tonic", Category: "Diluant", InStock: true},
		{Name: "Ginger beer", Category: "Diluant", InStock: true},
		{Name: "Cola", Category: "Diluant", InStock: true},

		{Name: "Menthe", Category: "Garniture", InStock: true},
		{Name: "Glaçons", Category: "Garniture", InStock: true},
	}

	cocktails := []seedCocktail{
		{
			Name:  "Mojito",
			Image: "mojito.jpg",
			Lines: []seedLine{
				{"Rhum blanc", "5 cl"},
				{"Citron vert", "1/2"},
				{"Menthe", "8 feuilles"},
				{"Sirop de sucre", "2 cl"},
				{"Eau gazeuse", "top"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Gin Tonic",
			Image: "gin-tonic.jpg",
			Lines: []seedLine{
				{"Gin", "5 cl"},
				{"Tonic", "15 cl"},
				{"Citron vert", "1 quartier"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Margarita",
			Image: "margarita.jpg",
			Lines: []seedLine{
				{"Tequila", "5 cl"},
				{"Triple sec", "3 cl"},
				{"Citron vert", "1/2"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Moscow Mule",
			Image: "moscow-mule.jpg",
			Lines: []seedLine{
				{"Vodka", "5 cl"},
				{"Ginger beer", "15 cl"},
				{"Citron vert", "1/2"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Cuba Libre",
			Image: "cuba-libre.jpg",
			Lines: []seedLine{
				{"Rhum blanc", "5 cl"},
				{"Cola", "15 cl"},
				{"Citron vert", "1 quartier"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Virgin Mojito",
			Image: "virgin-mojito.jpg",
			Lines: []seedLine{
				{"Citron vert", "1/2"},
				{"Menthe", "8 feuilles"},
				{"Sirop de sucre", "2 cl"},
				{"Eau gazeuse", "top"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "JNPR Tonic",
			Image: "jnpr-tonic.jpg",
			Lines: []seedLine{
				{"JNPR n°1", "5 cl"},
				{"Tonic", "15 cl"},
				{"Citron vert", "1 quartier"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Tequila Sunrise",
			Image: "tequila-sunrise.jpg",
			Lines: []seedLine{
				{"Tequila", "5 cl"},
				{"Jus d'orange", "12 cl"},
				{"Sirop de grenadine", "1 cl"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Sunset sans alcool",
			Image: "sunset.jpg",
			Lines: []seedLine{
				{"Jus d'orange", "10 cl"},
				{"Jus d'ananas", "5 cl"},
				{"Sirop de grenadine", "1 cl"},
				{"Glaçons", ""},
			},
		},
		{
			Name:  "Cranberry Fizz",
			Image: "cranberry-fizz.jpg",
			Lines: []seedLine{
				{"Jus de cranberry", "10 cl"},
				{"Eau gazeuse", "5 cl"},
				{"Citron vert", "1 quartier"},
				{"Glaçons", ""},
			},
		},
	}

	ingIDs := map[string]int64{}
	for _, ing := range ingredients {
		id, err := upsertIngredient(tx, ing)
		if err != nil {
			return fmt.Errorf("seed ingredient %q: %w", ing.Name, err)
		}
		ingIDs[ing.Name] = id
	}

	for _, c := range cocktails {
		cid, err := upsertSeedCocktail(tx, c)
		if err != nil {
			return fmt.Errorf("seed cocktail %q: %w", c.Name, err)
		}
		has, err := cocktailHasLines(tx, cid)
		if err != nil {
			return fmt.Errorf("check recipe %q: %w", c.Name, err)
		}
		if has {
			continue
		}
		for pos, l := range c.Lines {
			iid := ingIDs[l.IngredientName]
			if _, err := tx.Exec(`
				INSERT INTO cocktail_ingredients(cocktail_id,ingredient_id,quantity,position)
				VALUES(?,?,?,?)`, cid, iid, l.Quantity, pos); err != nil {
				return fmt.Errorf("insert line %q -> %q: %w", c.Name, l.IngredientName, err)
			}
		}
	}

	return tx.Commit()
}

func upsertIngredient(tx *sql.Tx, ing seedIngredient) (int64, error) {
	// Conditional insert (valid in SQLite)
	_, err := tx.Exec(`
		INSERT INTO ingredients(name,category,in_stock,created_at,updated_at)
		SELECT ?,?,?,?,?
		WHERE NOT EXISTS (SELECT 1 FROM ingredients WHERE name=?);`,
		ing.Name, ing.Category, b2i(ing.InStock), unixNow(), unixNow(),
		ing.Name,
	)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM ingredients WHERE name=?;`, ing.Name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func upsertSeedCocktail(tx *sql.Tx, c seedCocktail) (int64, error) {
	_, err := tx.Exec(`
		INSERT INTO cocktails(name,image,is_enabled,created_at,updated_at)
		SELECT ?,?,1,?,?
		WHERE NOT EXISTS (SELECT 1 FROM cocktails WHERE name=?);`,
		c.Name, c.Image, unixNow(), unixNow(),
		c.Name,
	)
	if err != nil {
		return 0, err
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM cocktails WHERE name=?;`, c.Name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func cocktailHasLines(tx *sql.Tx, cocktailID int64) (bool, error) {
	var n int
	if err := tx.QueryRow(`SELECT COUNT(1) FROM cocktail_ingredients WHERE cocktail_id=?;`, cocktailID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
