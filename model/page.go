package model

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageReq is a 1-based page request.
type PageReq struct {
	Page int
	Size int
}

func NewPageReq(page, size int) PageReq {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageReq{Page: page, Size: size}
}

func (p PageReq) Offset() int { return (p.Page - 1) * p.Size }
func (p PageReq) Limit() int  { return p.Size }
