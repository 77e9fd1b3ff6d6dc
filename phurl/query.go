package phurl

import "context"

type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
)

// Store finds URLs matching a query.
type Store interface {
	FindURLs(ctx context.Context, query *URLQuery) ([]*URL, error)
}

type URLQuery struct {
	ids         []int64
	phids       []string
	authorPHIDs []string
	order       Order
	limit       int
}

func NewURLQuery() *URLQuery {
	return &URLQuery{order: OrderNewest}
}

func (query *URLQuery) WithIDs(ids []int64) *URLQuery {
	query.ids = ids
	return query
}

func (query *URLQuery) WithPHIDs(phids []string) *URLQuery {
	query.phids = phids
	return query
}

func (query *URLQuery) WithAuthorPHIDs(phids []string) *URLQuery {
	query.authorPHIDs = phids
	return query
}

func (query *URLQuery) SetOrder(order Order) *URLQuery {
	query.order = order
	return query
}

// SetLimit caps the number of results; zero means no limit.
func (query *URLQuery) SetLimit(limit int) *URLQuery {
	query.limit = limit
	return query
}

func (query *URLQuery) IDs() []int64 {
	return query.ids
}

func (query *URLQuery) PHIDs() []string {
	return query.phids
}

func (query *URLQuery) AuthorPHIDs() []string {
	return query.authorPHIDs
}

func (query *URLQuery) Order() Order {
	return query.order
}

func (query *URLQuery) Limit() int {
	return query.limit
}

func (query *URLQuery) Execute(ctx context.Context, store Store) ([]*URL, error) {
	return store.FindURLs(ctx, query)
}
