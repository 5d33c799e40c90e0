// Package pagination implements page/limit query parsing and the
// {count, next, previous, results} payload.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	MaxLimit = 100
	// MaxPage keeps (Page-1)*Limit far from integer overflow.
	MaxPage = 1_000_000
)

type Params struct {
	Page  int
	Limit int
}

// FromQuery reads page and limit, falling back to page 1 and defaultLimit
// for missing or malformed values. Limit is capped at MaxLimit and page at
// MaxPage.
func FromQuery(q url.Values, defaultLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = 6
	}
	p := Params{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = min(v, MaxPage)
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// New builds a page for the request URL u, rewriting its page parameter for
// the neighbour links.
func New[T any](u *url.URL, p Params, count int, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	pg := Page[T]{Count: count, Results: results}
	if p.Offset()+len(results) < count {
		pg.Next = link(u, p.Page+1)
	}
	if p.Page > 1 {
		pg.Previous = link(u, p.Page-1)
	}
	return pg
}

func link(u *url.URL, page int) *string {
	if u == nil {
		return nil
	}
	next := *u
	q := next.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	next.RawQuery = q.Encode()
	s := next.String()
	return &s
}
