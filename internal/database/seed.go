package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

type seedCategory struct {
	slug, name, description string
}

var seedCategories = []seedCategory{
	{"tecnologia", "Tecnología", "Noticias y análisis del mundo tecnológico."},
	{"programacion", "Programación", "Lenguajes, herramientas y buenas prácticas."},
	{"inteligencia-artificial", "Inteligencia Artificial", "Modelos, aplicaciones y ética de la IA."},
	{"ciberseguridad", "Ciberseguridad", "Amenazas, defensas y privacidad."},
}

var seedTags = [][2]string{
	{"go", "Go"},
	{"postgres", "PostgreSQL"},
	{"linux", "Linux"},
}

// Seed populates the database with initial development data: the base
// categories, a few tags and a welcome post. It does nothing when any
// category already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var welcomeCategory string
	for i, c := range seedCategories {
		var id string
		err := tx.QueryRow(`
			INSERT INTO categories (slug, name, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, c.slug, c.name, c.description).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
		if i == 0 {
			welcomeCategory = id
		}
	}

	for _, t := range seedTags {
		if _, err := tx.Exec(`
			INSERT INTO tags (slug, name) VALUES ($1, $2)
			ON CONFLICT (slug) DO NOTHING
		`, t[0], t[1]); err != nil {
			return fmt.Errorf("seed tag %s: %w", t[0], err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO posts (slug, title, excerpt, content, image, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO NOTHING
	`,
		"bienvenido-a-flik",
		"Bienvenido a Flik",
		"El primer artículo del blog.",
		"<p>Este es el primer artículo de Flik. Edítalo o bórralo desde el panel de administración.</p>",
		"/bienvenido-a-flik.png",
		welcomeCategory,
	); err != nil {
		return fmt.Errorf("seed welcome post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development content",
		"categories", len(seedCategories),
		"tags", len(seedTags),
	)
	return nil
}
