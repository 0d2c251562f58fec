package model

import "time"

type Loan struct {
	ID            int64     `json:"id"`
	BookID        int64     `json:"book_id"`
	Book          *Book     `json:"book,omitempty"`
	Customer      string    `json:"customer"`
	CustomerEmail string    `json:"customer_email"`
	LoanDate      time.Time `json:"loan_date"`
	Returned      *bool     `json:"returned,omitempty"`
}

// Open reports whether the loan has not been returned. A nil Returned
// means open, same as an explicit false.
func (l Loan) Open() bool {
	return l.Returned == nil || !*l.Returned
}

// LoanFilter matches loans whose book isbn OR customer equals the given
// value. Both fields are optional; empty fields are skipped.
type LoanFilter struct {
	ISBN     string
	Customer string
}
