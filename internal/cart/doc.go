// Package cart implements the cart store: an explicitly constructed object
// that owns the cart lines, persists the whole cart through an injected
// types.Storage after every mutation, and derives counts and totals.
//
// The store never surfaces persistence failures as errors. A failed read
// yields an empty cart; a failed write is logged and the in-memory cart keeps
// the mutation for the rest of the session. SaveErr reports the most recent
// write failure for callers that want to warn the user.
package cart
