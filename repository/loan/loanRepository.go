package loanrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/NirsoItu/api-biblioteca/model"
)

const dialect = "postgres"

var loanCols = []any{
	"l.id", "l.book_id", "l.customer", "l.customer_email", "l.loan_date", "l.returned",
	"b.id", "b.title", "b.author", "b.isbn",
}

type Repo interface {
	Create(ctx context.Context, l *model.Loan) error
	GetByID(ctx context.Context, id int64) (*model.Loan, error)
	ExistsOpenByBook(ctx context.Context, bookID int64) (bool, error)
	SetReturned(ctx context.Context, id int64, returned bool) error
	Find(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error)
	ListByBook(ctx context.Context, bookID int64, p model.PageReq) ([]model.Loan, int64, error)
	ListLateBefore(ctx context.Context, cutoff time.Time) ([]model.Loan, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, l *model.Loan) error {
	const q = `
INSERT INTO loans (book_id, customer, customer_email, loan_date)
VALUES ($1,$2,$3,$4)
RETURNING id, loan_date`
	return r.db.QueryRowContext(ctx, q, l.BookID, l.Customer, l.CustomerEmail, l.LoanDate).
		Scan(&l.ID, &l.LoanDate)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Loan, error) {
	const q = `
SELECT l.id, l.book_id, l.customer, l.customer_email, l.loan_date, l.returned,
       b.id, b.title, b.author, b.isbn
FROM loans l
JOIN books b ON b.id = l.book_id
WHERE l.id = $1`
	l, err := scanLoan(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *repo) ExistsOpenByBook(ctx context.Context, bookID int64) (bool, error) {
	const q = `
SELECT EXISTS(
	SELECT 1 FROM loans
	WHERE book_id = $1 AND NOT COALESCE(returned, FALSE)
)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) SetReturned(ctx context.Context, id int64, returned bool) error {
	const q = `
UPDATE loans
SET returned = $2
WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, returned)
	return err
}

// Find matches loans whose book isbn OR customer equals the filter value.
// Empty filter fields are skipped; with both empty every loan matches.
func (r *repo) Find(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error) {
	or := make([]goqu.Expression, 0, 2)
	if f.ISBN != "" {
		or = append(or, goqu.I("b.isbn").Eq(f.ISBN))
	}
	if f.Customer != "" {
		or = append(or, goqu.I("l.customer").Eq(f.Customer))
	}
	where := make([]goqu.Expression, 0, 1)
	if len(or) > 0 {
		where = append(where, goqu.Or(or...))
	}
	return r.page(ctx, where, p)
}

func (r *repo) ListByBook(ctx context.Context, bookID int64, p model.PageReq) ([]model.Loan, int64, error) {
	return r.page(ctx, []goqu.Expression{goqu.I("l.book_id").Eq(bookID)}, p)
}

func (r *repo) page(ctx context.Context, where []goqu.Expression, p model.PageReq) ([]model.Loan, int64, error) {
	base := goqu.Dialect(dialect).
		From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Where(where...)

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	selectSQL, selectArgs, err := base.
		Select(loanCols...).
		Order(goqu.I("l.id").Asc()).
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

	out, err := collectLoans(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListLateBefore returns every open loan whose loan date is strictly
// before the cutoff.
func (r *repo) ListLateBefore(ctx context.Context, cutoff time.Time) ([]model.Loan, error) {
	const q = `
SELECT l.id, l.book_id, l.customer, l.customer_email, l.loan_date, l.returned,
       b.id, b.title, b.author, b.isbn
FROM loans l
JOIN books b ON b.id = l.book_id
WHERE l.loan_date < $1
  AND NOT COALESCE(l.returned, FALSE)
ORDER BY l.id`
	rows, err := r.db.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLoans(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(s scanner) (*model.Loan, error) {
	var l model.Loan
	var b model.Book
	if err := s.Scan(
		&l.ID, &l.BookID, &l.Customer, &l.CustomerEmail, &l.LoanDate, &l.Returned,
		&b.ID, &b.Title, &b.Author, &b.ISBN,
	); err != nil {
		return nil, err
	}
	l.Book = &b
	return &l, nil
}

func collectLoans(rows *sql.Rows) ([]model.Loan, error) {
	var out []model.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
