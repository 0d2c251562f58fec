package booksvc

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NirsoItu/api-biblioteca/model"
	bookrepo "github.com/NirsoItu/api-biblioteca/repository/book"
)

// errors used by controllers

type ErrCode string

const (
	ErrDuplicateISBN ErrCode = "DUPLICATE_ISBN"
	ErrMissingID     ErrCode = "MISSING_ID"
	ErrHasLoans      ErrCode = "BOOK_HAS_LOANS"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// Save registers a new book; the isbn must not be taken.
	Save(ctx context.Context, b *model.Book) (*model.Book, error)

	// GetByID returns the book, or nil when absent. Absence is not an
	// error; callers decide whether it is fatal.
	GetByID(ctx context.Context, id int64) (*model.Book, error)

	// Update overwrites title and author of an existing book.
	Update(ctx context.Context, b *model.Book) (*model.Book, error)

	Delete(ctx context.Context, b *model.Book) error
	Find(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

func (s *service) Save(ctx context.Context, b *model.Book) (*model.Book, error) {
	taken, err := s.r.ExistsByISBN(ctx, b.ISBN)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, makeErr(ErrDuplicateISBN)
	}
	if err := s.r.Create(ctx, b); err != nil {
		// The unique index catches the race between the check above and
		// the insert.
		if isUniqueViolation(err) {
			return nil, makeErr(ErrDuplicateISBN)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	return s.r.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	if b == nil || b.ID == 0 {
		return nil, makeErr(ErrMissingID)
	}
	if err := s.r.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, b *model.Book) error {
	if b == nil || b.ID == 0 {
		return makeErr(ErrMissingID)
	}
	hasLoans, err := s.r.HasLoans(ctx, b.ID)
	if err != nil {
		return err
	}
	if hasLoans {
		return makeErr(ErrHasLoans)
	}
	return s.r.Delete(ctx, b.ID)
}

func (s *service) Find(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error) {
	return s.r.Find(ctx, f, p)
}

func (s *service) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	return s.r.GetByISBN(ctx, isbn)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
