package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
)

// Catalog reads course titles and technology names for certificate wording.
// An unknown id yields an empty name, which callers replace with a generic label.
type Catalog struct {
	db bun.IDB
}

func NewCatalog(db bun.IDB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) CourseTitle(ctx context.Context, id string) (string, error) {
	return c.name(ctx, "courses", "title", id)
}

func (c *Catalog) TechnologyName(ctx context.Context, id string) (string, error) {
	return c.name(ctx, "technologies", "name", id)
}

// PutCourse upserts a course title.
func (c *Catalog) PutCourse(ctx context.Context, id, title string) error {
	_, err := c.db.NewRaw("INSERT INTO courses (id, title) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title", id, title).Exec(ctx)
	return err
}

// PutTechnology upserts a technology name.
func (c *Catalog) PutTechnology(ctx context.Context, id, name string) error {
	_, err := c.db.NewRaw("INSERT INTO technologies (id, name) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name", id, name).Exec(ctx)
	return err
}

func (c *Catalog) name(ctx context.Context, table, column, id string) (string, error) {
	var name string
	err := c.db.NewRaw("SELECT ? FROM ? WHERE id = ?", bun.Ident(column), bun.Ident(table), id).Scan(ctx, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}
