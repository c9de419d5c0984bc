// Package types defines the Storage interface, the cart and catalog entity
// types, and the standard error values shared by every basket component.
//
// Storage is the key-value contract the cart, order ledger, contact inbox and
// preferences persist through. Backends live in internal/sqlite and
// internal/memory.
package types
