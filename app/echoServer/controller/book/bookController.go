package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/NirsoItu/api-biblioteca/model"
	booksvc "github.com/NirsoItu/api-biblioteca/service/book"
	loansvc "github.com/NirsoItu/api-biblioteca/service/loan"
)

type Controller struct {
	Svc   booksvc.Service
	Loans loansvc.Service
	V     *validator.Validate
	Log   *slog.Logger
}

// POST /api/books
// @Summary      Register a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateBookReq  true  "Book payload"
// @Success      201  {object}  model.Book
// @Failure      400  {object}  map[string]any "validation error or isbn already registered"
// @Router       /api/books [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b := &model.Book{Title: req.Title, Author: req.Author, ISBN: req.ISBN}
	created, err := h.Svc.Save(c.Request().Context(), b)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrDuplicateISBN:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "isbn already registered"})
		default:
			h.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, created)
}

// GET /api/books/:id
// @Summary      Get a book by id
// @Tags         books
// @Produce      json
// @Success      200  {object}  model.Book
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [get]
func (h *Controller) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("book get", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}
	return c.JSON(http.StatusOK, b)
}

// PUT /api/books/:id
// @Summary      Update title and author of a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        payload  body  UpdateBookReq  true  "Book payload"
// @Success      200  {object}  model.Book
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id} [put]
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	ctx := c.Request().Context()
	b, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		h.Log.Error("book update", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}

	b.Title = req.Title
	b.Author = req.Author
	updated, err := h.Svc.Update(ctx, b)
	if err != nil {
		h.Log.Error("book update", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DELETE /api/books/:id
// @Summary      Delete a book
// @Tags         books
// @Success      204
// @Failure      404  {object}  map[string]any
// @Failure      409  {object}  map[string]any "book has loans"
// @Router       /api/books/{id} [delete]
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx := c.Request().Context()
	b, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		h.Log.Error("book delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}
	if err := h.Svc.Delete(ctx, b); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrHasLoans:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book has loans"})
		default:
			h.Log.Error("book delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /api/books
// @Summary      Search books by example
// @Tags         books
// @Produce      json
// @Param        title   query  string  false  "title substring"
// @Param        author  query  string  false  "author substring"
// @Param        isbn    query  string  false  "isbn substring"
// @Param        page    query  int     false  "page (1-based)"
// @Param        size    query  int     false  "page size"
// @Success      200  {object}  map[string]any
// @Router       /api/books [get]
func (h *Controller) Find(c echo.Context) error {
	f := model.BookFilter{
		Title:  c.QueryParam("title"),
		Author: c.QueryParam("author"),
		ISBN:   c.QueryParam("isbn"),
	}
	p := pageReq(c)
	rows, total, err := h.Svc.Find(c.Request().Context(), f, p)
	if err != nil {
		h.Log.Error("book find", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Book{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": rows, "page": p.Page, "size": p.Size, "total": total,
	})
}

// GET /api/books/:id/loans
// @Summary      List loans of a book
// @Tags         books
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/books/{id}/loans [get]
func (h *Controller) LoansByBook(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	ctx := c.Request().Context()
	b, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		h.Log.Error("book loans", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if b == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	}
	p := pageReq(c)
	rows, total, err := h.Loans.LoansByBook(ctx, id, p)
	if err != nil {
		h.Log.Error("book loans", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Loan{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data": rows, "page": p.Page, "size": p.Size, "total": total,
	})
}

func pageReq(c echo.Context) model.PageReq {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return model.NewPageReq(page, size)
}
