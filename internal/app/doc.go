// Package app provides the application service layer.
//
// Orchestrates the two use cases of the box: rendering the current view (settling the round
// once the deadline has passed) and casting a vote. Loads and saves go through
// domain.StateRepository; the round rules live in the round package.
package app
