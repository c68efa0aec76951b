// Package domain defines the core domain types and interfaces of the box round.
//
// This package contains concept-oriented files (vote.go, round.go, view.go, store.go, errors.go)
// with shared types and cross-cutting interfaces. No implementation code beyond small value
// helpers - just contracts. Keeps the engine, the stores and the presentation layer decoupled.
package domain
