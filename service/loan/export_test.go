package loansvc

import (
	"time"

	loanrepo "github.com/NirsoItu/api-biblioteca/repository/loan"
)

// NewWithClock builds the service with a fixed clock.
func NewWithClock(r loanrepo.Repo, now func() time.Time) Service {
	return &service{r: r, now: now}
}
