package loan

type CreateLoanReq struct {
	ISBN          string `json:"isbn" validate:"required"`
	Customer      string `json:"customer" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
}

type ReturnLoanReq struct {
	Returned *bool `json:"returned" validate:"required"`
}
