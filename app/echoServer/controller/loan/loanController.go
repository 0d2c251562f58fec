package loan

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
	Svc   loansvc.Service
	Books booksvc.Service
	V     *validator.Validate
	Log   *slog.Logger
}

// POST /api/loans
// @Summary      Loan a book by isbn
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateLoanReq  true  "Loan payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any "unknown isbn or book already loaned"
// @Router       /api/loans [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	ctx := c.Request().Context()
	b, err := h.Books.GetByISBN(ctx, req.ISBN)
	if err != nil {
		h.Log.Error("loan create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if b == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book not found for passed isbn"})
	}

	l := &model.Loan{
		BookID:        b.ID,
		Customer:      req.Customer,
		CustomerEmail: req.CustomerEmail,
	}
	created, err := h.Svc.Save(ctx, l)
	if err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrBookLoaned:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book already loaned"})
		default:
			h.Log.Error("loan create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": created.ID})
}

// PATCH /api/loans/:id
// @Summary      Mark a loan returned (or reopen it)
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        payload  body  ReturnLoanReq  true  "Returned flag"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/loans/{id} [patch]
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReturnLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	ctx := c.Request().Context()
	l, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		h.Log.Error("loan return", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if l == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "loan not found"})
	}

	if err := h.Svc.SetReturned(ctx, l, *req.Returned); err != nil {
		switch loansvc.Code(err) {
		case loansvc.ErrBookLoaned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book already loaned"})
		default:
			h.Log.Error("loan return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// GET /api/loans
// @Summary      Search loans by book isbn or customer
// @Tags         loans
// @Produce      json
// @Param        isbn      query  string  false  "exact isbn"
// @Param        customer  query  string  false  "exact customer"
// @Param        page      query  int     false  "page (1-based)"
// @Param        size      query  int     false  "page size"
// @Success      200  {object}  map[string]any
// @Router       /api/loans [get]
func (h *Controller) Find(c echo.Context) error {
	f := model.LoanFilter{
		ISBN:     c.QueryParam("isbn"),
		Customer: c.QueryParam("customer"),
	}
	p := pageReq(c)
	rows, total, err := h.Svc.Find(c.Request().Context(), f, p)
	if err != nil {
		h.Log.Error("loan find", "err", err)
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
