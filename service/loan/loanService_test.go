package loansvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/NirsoItu/api-biblioteca/model"
	loansvc "github.com/NirsoItu/api-biblioteca/service/loan"
)

type repoMock struct {
	createFn           func(ctx context.Context, l *model.Loan) error
	getByIDFn          func(ctx context.Context, id int64) (*model.Loan, error)
	existsOpenByBookFn func(ctx context.Context, bookID int64) (bool, error)
	setReturnedFn      func(ctx context.Context, id int64, returned bool) error
	findFn             func(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error)
	listByBookFn       func(ctx context.Context, bookID int64, p model.PageReq) ([]model.Loan, int64, error)
	listLateBeforeFn   func(ctx context.Context, cutoff time.Time) ([]model.Loan, error)
}

func (m *repoMock) Create(ctx context.Context, l *model.Loan) error {
	if m.createFn == nil {
		l.ID = 1
		return nil
	}
	return m.createFn(ctx, l)
}

func (m *repoMock) GetByID(ctx context.Context, id int64) (*model.Loan, error) {
	if m.getByIDFn == nil {
		return nil, nil
	}
	return m.getByIDFn(ctx, id)
}

func (m *repoMock) ExistsOpenByBook(ctx context.Context, bookID int64) (bool, error) {
	if m.existsOpenByBookFn == nil {
		return false, nil
	}
	return m.existsOpenByBookFn(ctx, bookID)
}

func (m *repoMock) SetReturned(ctx context.Context, id int64, returned bool) error {
	if m.setReturnedFn == nil {
		return nil
	}
	return m.setReturnedFn(ctx, id, returned)
}

func (m *repoMock) Find(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error) {
	if m.findFn == nil {
		return nil, 0, nil
	}
	return m.findFn(ctx, f, p)
}

func (m *repoMock) ListByBook(ctx context.Context, bookID int64, p model.PageReq) ([]model.Loan, int64, error) {
	if m.listByBookFn == nil {
		return nil, 0, nil
	}
	return m.listByBookFn(ctx, bookID, p)
}

func (m *repoMock) ListLateBefore(ctx context.Context, cutoff time.Time) ([]model.Loan, error) {
	if m.listLateBeforeFn == nil {
		return nil, nil
	}
	return m.listLateBeforeFn(ctx, cutoff)
}

func TestSave_BookAlreadyLoaned(t *testing.T) {
	wrote := false
	m := &repoMock{
		existsOpenByBookFn: func(ctx context.Context, bookID int64) (bool, error) { return true, nil },
		createFn: func(ctx context.Context, l *model.Loan) error {
			wrote = true
			return nil
		},
	}
	s := loansvc.New(m)

	_, err := s.Save(context.Background(), &model.Loan{BookID: 1, Customer: "Ana"})
	if loansvc.Code(err) != loansvc.ErrBookLoaned {
		t.Fatalf("got %v; want BOOK_LOANED", err)
	}
	if wrote {
		t.Fatal("save must not write while another loan is open")
	}
}

func TestSave_SecondLoanConflicts(t *testing.T) {
	open := false
	m := &repoMock{
		existsOpenByBookFn: func(ctx context.Context, bookID int64) (bool, error) { return open, nil },
		createFn: func(ctx context.Context, l *model.Loan) error {
			l.ID = 1
			open = true
			return nil
		},
	}
	s := loansvc.New(m)

	first, err := s.Save(context.Background(), &model.Loan{BookID: 1, Customer: "Ana"})
	if err != nil || first.ID == 0 {
		t.Fatalf("first save: id=%v err=%v", first.ID, err)
	}
	if first.LoanDate.IsZero() {
		t.Fatal("loan date must default to now")
	}

	_, err = s.Save(context.Background(), &model.Loan{BookID: 1, Customer: "Rogério"})
	if loansvc.Code(err) != loansvc.ErrBookLoaned {
		t.Fatalf("second save got %v; want BOOK_LOANED", err)
	}
}

func TestAllLateLoans_Threshold(t *testing.T) {
	// Just past midnight, when the sweep actually runs.
	now := time.Date(2024, 6, 10, 0, 0, 0, 1000, time.UTC)
	date := func(daysAgo int) time.Time {
		y, m, d := now.AddDate(0, 0, -daysAgo).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	// Mimics the store: loan_date is a DATE, open loans strictly older
	// than the cutoff.
	seeded := []model.Loan{
		{ID: 1, CustomerEmail: "late@mail.com", LoanDate: date(5)},
		{ID: 2, CustomerEmail: "edge@mail.com", LoanDate: date(4)},
		{ID: 3, CustomerEmail: "fresh@mail.com", LoanDate: date(0)},
	}
	m := &repoMock{
		listLateBeforeFn: func(ctx context.Context, cutoff time.Time) ([]model.Loan, error) {
			if !cutoff.Equal(date(4)) {
				t.Fatalf("cutoff = %v; want the whole date %v", cutoff, date(4))
			}
			var out []model.Loan
			for _, l := range seeded {
				if l.LoanDate.Before(cutoff) {
					out = append(out, l)
				}
			}
			return out, nil
		},
	}
	s := loansvc.NewWithClock(m, func() time.Time { return now })

	late, err := s.AllLateLoans(context.Background())
	if err != nil {
		t.Fatalf("allLateLoans: %v", err)
	}
	if len(late) != 1 || late[0].ID != 1 {
		t.Fatalf("got %+v; want only loan 1 (today-4 is not yet late)", late)
	}
}

func TestSetReturned_Close(t *testing.T) {
	checked := false
	m := &repoMock{
		existsOpenByBookFn: func(ctx context.Context, bookID int64) (bool, error) {
			checked = true
			return true, nil
		},
	}
	s := loansvc.New(m)

	if err := s.SetReturned(context.Background(), &model.Loan{ID: 5, BookID: 1}, true); err != nil {
		t.Fatalf("close: %v", err)
	}
	if checked {
		t.Fatal("closing a loan must not run the open-loan check")
	}
}

func TestSetReturned_ReopenConflicts(t *testing.T) {
	returned := true
	closed := &model.Loan{ID: 5, BookID: 1, Returned: &returned}
	m := &repoMock{
		existsOpenByBookFn: func(ctx context.Context, bookID int64) (bool, error) { return true, nil },
	}
	s := loansvc.New(m)

	err := s.SetReturned(context.Background(), closed, false)
	if loansvc.Code(err) != loansvc.ErrBookLoaned {
		t.Fatalf("reopen got %v; want BOOK_LOANED", err)
	}
}

func TestSetReturned_MissingID(t *testing.T) {
	s := loansvc.New(&repoMock{})
	if err := s.SetReturned(context.Background(), &model.Loan{}, true); loansvc.Code(err) != loansvc.ErrMissingID {
		t.Fatalf("got %v; want MISSING_ID", err)
	}
}

func TestFind_ForwardsFilter(t *testing.T) {
	var gotFilter model.LoanFilter
	m := &repoMock{
		findFn: func(ctx context.Context, f model.LoanFilter, p model.PageReq) ([]model.Loan, int64, error) {
			gotFilter = f
			return []model.Loan{{ID: 1}}, 1, nil
		},
	}
	s := loansvc.New(m)

	_, _, err := s.Find(context.Background(), model.LoanFilter{Customer: "Rogério"}, model.NewPageReq(1, 20))
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if gotFilter.ISBN != "" || gotFilter.Customer != "Rogério" {
		t.Fatalf("filter not forwarded: %+v", gotFilter)
	}
}
