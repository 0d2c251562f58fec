package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/NirsoItu/api-biblioteca/app/echoServer/controller/auth"
	"github.com/NirsoItu/api-biblioteca/app/echoServer/controller/book"
	"github.com/NirsoItu/api-biblioteca/app/echoServer/controller/loan"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Loan      *loan.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api")
	pub.POST("/librarians/register", c.Auth.Register)
	pub.POST("/librarians/login", c.Auth.Login)

	pub.GET("/books", c.Book.Find)
	pub.GET("/books/:id", c.Book.Get)
	pub.GET("/books/:id/loans", c.Book.LoansByBook)
	pub.GET("/loans", c.Loan.Find)

	// Mutations require a librarian token
	priv := e.Group("/api")
	priv.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))

	priv.POST("/books", c.Book.Create)
	priv.PUT("/books/:id", c.Book.Update)
	priv.DELETE("/books/:id", c.Book.Delete)

	priv.POST("/loans", c.Loan.Create)
	priv.PATCH("/loans/:id", c.Loan.Return)
}
