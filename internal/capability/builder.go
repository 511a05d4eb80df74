package capability

import (
	"errors"
	"fmt"
)

type queuedUpdate struct {
	contributor string
	apply       Update
}

// Builder applies queued updates to a fresh statement. Updates run one at a
// time in the order they were queued.
type Builder struct {
	resolver Resolver
	queue    []queuedUpdate
	applied  func(contributor string)
}

// NewBuilder creates a builder resolving operation URLs through resolver.
func NewBuilder(resolver Resolver) (*Builder, error) {
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	return &Builder{resolver: resolver}, nil
}

// Update queues updates on behalf of contributor.
func (b *Builder) Update(contributor string, updates ...Update) {
	for _, u := range updates {
		if u == nil {
			continue
		}
		b.queue = append(b.queue, queuedUpdate{contributor: contributor, apply: u})
	}
}

// Len returns the number of queued updates.
func (b *Builder) Len() int {
	return len(b.queue)
}

// Build applies every queued update to a new statement. The first failing
// update aborts the pass and no statement is returned.
func (b *Builder) Build() (*Statement, error) {
	stmt := &Statement{}
	for i, q := range b.queue {
		if err := q.apply(stmt, b.resolver); err != nil {
			return nil, fmt.Errorf("apply update %d from %s: %w", i, q.contributor, err)
		}
		if b.applied != nil {
			b.applied(q.contributor)
		}
	}
	if err := stmt.Validate(); err != nil {
		return nil, err
	}
	return stmt, nil
}
