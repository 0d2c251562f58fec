package loansvc

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NirsoItu/api-biblioteca/model"
	loanrepo "github.com/NirsoItu/api-biblioteca/repository/loan"
)

// lateThresholdDays is how long a loan may stay open before the daily
// sweep flags it as late.
const lateThresholdDays = 4

// errors used by controllers

type ErrCode string

const (
	ErrBookLoaned ErrCode = "BOOK_LOANED"
	ErrMissingID  ErrCode = "MISSING_ID"
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
	// Save creates a loan for a book that has no other open loan.
	Save(ctx context.Context, l *model.Loan) (*model.Loan, error)

	// GetByID returns the loan, or nil when absent.
	GetByID(ctx context.Context, id int64) (*model.Loan, error)

	// SetReturned flips the returned flag. Reopening a closed loan runs
	// the same one-open-loan check as Save.
	SetReturned(ctx context.Context, l *model.Loan, returned bool) error

	Find(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error)
	LoansByBook(ctx context.Context, bookID int64, p model.PageReq) ([]model.Loan, int64, error)

	// AllLateLoans returns every open loan older than the late threshold.
	AllLateLoans(ctx context.Context) ([]model.Loan, error)
}

type service struct {
	r   loanrepo.Repo
	now func() time.Time
}

func New(r loanrepo.Repo) Service {
	return &service{r: r, now: time.Now}
}

func (s *service) Save(ctx context.Context, l *model.Loan) (*model.Loan, error) {
	open, err := s.r.ExistsOpenByBook(ctx, l.BookID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, makeErr(ErrBookLoaned)
	}
	if l.LoanDate.IsZero() {
		l.LoanDate = s.now()
	}
	if err := s.r.Create(ctx, l); err != nil {
		// Partial unique index on open loans backstops the check above.
		if isUniqueViolation(err) {
			return nil, makeErr(ErrBookLoaned)
		}
		return nil, err
	}
	return l, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*model.Loan, error) {
	return s.r.GetByID(ctx, id)
}

func (s *service) SetReturned(ctx context.Context, l *model.Loan, returned bool) error {
	if l == nil || l.ID == 0 {
		return makeErr(ErrMissingID)
	}
	if !returned && !l.Open() {
		open, err := s.r.ExistsOpenByBook(ctx, l.BookID)
		if err != nil {
			return err
		}
		if open {
			return makeErr(ErrBookLoaned)
		}
	}
	if err := s.r.SetReturned(ctx, l.ID, returned); err != nil {
		if isUniqueViolation(err) {
			return makeErr(ErrBookLoaned)
		}
		return err
	}
	return nil
}

func (s *service) Find(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error) {
	return s.r.Find(ctx, f, p)
}

func (s *service) LoansByBook(ctx context.Context, bookID int64, p model.PageReq) ([]model.Loan, int64, error) {
	return s.r.ListByBook(ctx, bookID, p)
}

func (s *service) AllLateLoans(ctx context.Context) ([]model.Loan, error) {
	// Whole-date comparison: loan_date is a DATE, so the cutoff must be a
	// date too or a loan made exactly on the threshold day counts as late.
	y, m, d := s.now().AddDate(0, 0, -lateThresholdDays).Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return s.r.ListLateBefore(ctx, cutoff)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
