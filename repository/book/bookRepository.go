package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/NirsoItu/api-biblioteca/model"
)

const dialect = "postgres"

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	HasLoans(ctx context.Context, bookID int64) (bool, error)
	Find(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
INSERT INTO books (title, author, isbn)
VALUES ($1,$2,$3)
RETURNING id`
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.ISBN).Scan(&b.ID)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, title, author, isbn
FROM books
WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	const q = `
SELECT id, title, author, isbn
FROM books
WHERE isbn = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, isbn))
}

func (r *repo) scanOne(row *sql.Row) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, isbn).Scan(&exists)
	return exists, err
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	// isbn is immutable on the update path.
	const q = `
UPDATE books
SET title = $2, author = $3
WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, b.ID, b.Title, b.Author)
	return err
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *repo) HasLoans(ctx context.Context, bookID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM loans WHERE book_id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

// Find matches books by example: each non-empty filter field constrains
// the result as a case-insensitive substring, empty fields are wildcards.
func (r *repo) Find(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error) {
	where := make([]goqu.Expression, 0, 3)
	if f.Title != "" {
		where = append(where, goqu.C("title").ILike("%"+f.Title+"%"))
	}
	if f.Author != "" {
		where = append(where, goqu.C("author").ILike("%"+f.Author+"%"))
	}
	if f.ISBN != "" {
		where = append(where, goqu.C("isbn").ILike("%"+f.ISBN+"%"))
	}

	countSQL, countArgs, err := goqu.Dialect(dialect).
		From("books").
		Select(goqu.COUNT("*")).
		Where(where...).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	selectSQL, selectArgs, err := goqu.Dialect(dialect).
		From("books").
		Select("id", "title", "author", "isbn").
		Where(where...).
		Order(goqu.I("id").Asc()).
		Limit(uint(p.Limit())).
		Offset(uint(p.Offset())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}
