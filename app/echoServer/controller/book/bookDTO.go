package book

type CreateBookReq struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	ISBN   string `json:"isbn" validate:"required"`
}

type UpdateBookReq struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
}
