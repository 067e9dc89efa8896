package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"course-market/internal/domain"
	"course-market/internal/repository"
)

const createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);
`

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCategoriesTable); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}
	return nil
}

// Ensure inserts the category if it is missing and returns its id either way.
func (r *CategoryRepository) Ensure(ctx context.Context, name string) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO categories (name) VALUES (?)
ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("select category id: %w", err)
	}
	return id, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
