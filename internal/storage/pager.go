package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserLister is the query surface UserPager walks.
type UserLister interface {
	ListUsersExcept(ctx context.Context, arg ListUsersExceptParams) ([]ListUsersExceptRow, error)
}

// UserPager iterates every user except one in id order, one page at a time.
// Only the current page is held in memory. A pager is not safe for concurrent
// use.
type UserPager struct {
	lister    UserLister
	excludeID uuid.UUID
	pageSize  int32
	cursor    uuid.UUID
	done      bool
}

// NewUserPager returns a pager over all users whose id differs from excludeID.
// A non-positive pageSize is treated as 100.
func NewUserPager(lister UserLister, excludeID uuid.UUID, pageSize int32) *UserPager {
	return NewUserPagerAfter(lister, excludeID, uuid.Nil, pageSize)
}

// NewUserPagerAfter is NewUserPager resumed at a cursor: only users with
// id > afterID are returned.
func NewUserPagerAfter(lister UserLister, excludeID, afterID uuid.UUID, pageSize int32) *UserPager {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &UserPager{
		lister:    lister,
		excludeID: excludeID,
		pageSize:  pageSize,
		cursor:    afterID,
	}
}

// Next returns the next page. It returns an empty slice and a nil error once
// the users are exhausted.
func (p *UserPager) Next(ctx context.Context) ([]ListUsersExceptRow, error) {
	if p.done {
		return nil, nil
	}

	rows, err := p.lister.ListUsersExcept(ctx, ListUsersExceptParams{
		ExcludeID: p.excludeID,
		AfterID:   p.cursor,
		RowLimit:  p.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list users after %s: %w", p.cursor, err)
	}

	if int32(len(rows)) < p.pageSize {
		p.done = true
	}
	if len(rows) > 0 {
		p.cursor = rows[len(rows)-1].ID
	}
	return rows, nil
}

// Cursor returns the id of the last user returned, or the starting cursor
// before the first page.
func (p *UserPager) Cursor() uuid.UUID {
	return p.cursor
}

// Done reports whether the last page has been returned.
func (p *UserPager) Done() bool {
	return p.done
}
