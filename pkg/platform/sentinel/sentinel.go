package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Catalogues, registries and the
// capability document return these (optionally wrapped) so handlers can
// translate them into HTTP responses.
//
// These represent factual states, not validation failures:
// - ErrNotFound: the named entry does not exist
// - ErrConflict: an entry with the same key is already registered
// - ErrInvalidState: a structure violates one of its own invariants
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
