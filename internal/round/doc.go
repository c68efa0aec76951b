// Package round implements the round engine of the box.
//
// The Engine owns round timing, vote acceptance, one-time settlement and derived statistics.
// Every operation takes the state and the wall-clock time explicitly and returns a new state,
// so callers decide when to load, persist and render. No I/O happens here.
package round
