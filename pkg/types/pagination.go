package types

import "strconv"

// PageRequest is a 1-based page selector read from `page` and `page_size`.
type PageRequest struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Normalize clamps the request into [1, max] using def when no size is given.
func (p PageRequest) Normalize(def, max int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = def
	}
	if max > 0 && p.PageSize > max {
		p.PageSize = max
	}
	return p
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.PageSize }

// ParsePage reads page/page_size strings, ignoring malformed values.
func ParsePage(page, size string) PageRequest {
	var p PageRequest
	if n, err := strconv.Atoi(page); err == nil {
		p.Page = n
	}
	if n, err := strconv.Atoi(size); err == nil {
		p.PageSize = n
	}
	return p
}

type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

func NewPage[T any](req PageRequest, total int64, items []T) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Count: total, Page: req.Page, PageSize: req.PageSize, Results: items}
}

// SlicePage pages an in-memory slice, used for cached full lists.
func SlicePage[T any](req PageRequest, all []T) *Page[T] {
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.PageSize
	if end > len(all) {
		end = len(all)
	}
	return NewPage(req, int64(len(all)), all[start:end])
}
