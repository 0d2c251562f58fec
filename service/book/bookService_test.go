package booksvc_test

import (
	"context"
	"testing"

	"github.com/NirsoItu/api-biblioteca/model"
	booksvc "github.com/NirsoItu/api-biblioteca/service/book"
)

type repoMock struct {
	createFn       func(ctx context.Context, b *model.Book) error
	getByIDFn      func(ctx context.Context, id int64) (*model.Book, error)
	getByISBNFn    func(ctx context.Context, isbn string) (*model.Book, error)
	existsByISBNFn func(ctx context.Context, isbn string) (bool, error)
	updateFn       func(ctx context.Context, b *model.Book) error
	deleteFn       func(ctx context.Context, id int64) error
	hasLoansFn     func(ctx context.Context, bookID int64) (bool, error)
	findFn         func(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error {
	if m.createFn == nil {
		b.ID = 1
		return nil
	}
	return m.createFn(ctx, b)
}

func (m *repoMock) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	if m.getByIDFn == nil {
		return nil, nil
	}
	return m.getByIDFn(ctx, id)
}

func (m *repoMock) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if m.getByISBNFn == nil {
		return nil, nil
	}
	return m.getByISBNFn(ctx, isbn)
}

func (m *repoMock) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	if m.existsByISBNFn == nil {
		return false, nil
	}
	return m.existsByISBNFn(ctx, isbn)
}

func (m *repoMock) Update(ctx context.Context, b *model.Book) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, b)
}

func (m *repoMock) Delete(ctx context.Context, id int64) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

func (m *repoMock) HasLoans(ctx context.Context, bookID int64) (bool, error) {
	if m.hasLoansFn == nil {
		return false, nil
	}
	return m.hasLoansFn(ctx, bookID)
}

func (m *repoMock) Find(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error) {
	if m.findFn == nil {
		return nil, 0, nil
	}
	return m.findFn(ctx, f, p)
}

func TestSave_DuplicateISBN(t *testing.T) {
	wrote := false
	m := &repoMock{
		existsByISBNFn: func(ctx context.Context, isbn string) (bool, error) { return true, nil },
		createFn: func(ctx context.Context, b *model.Book) error {
			wrote = true
			return nil
		},
	}
	s := booksvc.New(m)

	_, err := s.Save(context.Background(), &model.Book{Title: "Meu sonho", Author: "Rogério", ISBN: "12345"})
	if booksvc.Code(err) != booksvc.ErrDuplicateISBN {
		t.Fatalf("got err=%v; want DUPLICATE_ISBN", err)
	}
	if wrote {
		t.Fatal("save must not write when the isbn is taken")
	}
}

func TestSave_ThenGetByID(t *testing.T) {
	var stored model.Book
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 7
			stored = *b
			return nil
		},
		getByIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			if id != stored.ID {
				return nil, nil
			}
			cp := stored
			return &cp, nil
		},
	}
	s := booksvc.New(m)

	created, err := s.Save(context.Background(), &model.Book{Title: "Meu sonho", Author: "Rogério", ISBN: "12345"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("getByID: %v", err)
	}
	if got == nil || *got != *created {
		t.Fatalf("got %+v; want %+v", got, created)
	}
}

func TestGetByID_Absent(t *testing.T) {
	s := booksvc.New(&repoMock{})
	got, err := s.GetByID(context.Background(), 99)
	if err != nil || got != nil {
		t.Fatalf("got %v %v; want nil nil", got, err)
	}
}

func TestUpdateDelete_MissingID(t *testing.T) {
	s := booksvc.New(&repoMock{})

	if _, err := s.Update(context.Background(), &model.Book{Title: "x"}); booksvc.Code(err) != booksvc.ErrMissingID {
		t.Fatalf("update got %v; want MISSING_ID", err)
	}
	if err := s.Delete(context.Background(), &model.Book{Title: "x"}); booksvc.Code(err) != booksvc.ErrMissingID {
		t.Fatalf("delete got %v; want MISSING_ID", err)
	}
	if _, err := s.Update(context.Background(), nil); booksvc.Code(err) != booksvc.ErrMissingID {
		t.Fatalf("update(nil) got %v; want MISSING_ID", err)
	}
}

func TestDelete_BlockedByLoans(t *testing.T) {
	deleted := false
	m := &repoMock{
		hasLoansFn: func(ctx context.Context, bookID int64) (bool, error) { return true, nil },
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	s := booksvc.New(m)

	err := s.Delete(context.Background(), &model.Book{ID: 3})
	if booksvc.Code(err) != booksvc.ErrHasLoans {
		t.Fatalf("got %v; want BOOK_HAS_LOANS", err)
	}
	if deleted {
		t.Fatal("delete must not remove a book that has loans")
	}
}

func TestFind_Passthrough(t *testing.T) {
	var gotFilter model.BookFilter
	m := &repoMock{
		findFn: func(ctx context.Context, f model.BookFilter, p model.PageReq) ([]model.Book, int64, error) {
			gotFilter = f
			return []model.Book{{ID: 1}}, 1, nil
		},
	}
	s := booksvc.New(m)

	rows, total, err := s.Find(context.Background(), model.BookFilter{Author: "Rogério"}, model.NewPageReq(1, 20))
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("got rows=%v total=%v err=%v", rows, total, err)
	}
	if gotFilter.Author != "Rogério" {
		t.Fatalf("filter not forwarded: %+v", gotFilter)
	}
}
