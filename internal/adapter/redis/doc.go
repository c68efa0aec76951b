// Package redis implements a Redis-backed round state store.
//
// One key per season holds the JSON layout of the round state. CompareAndSwap uses
// WATCH + MULTI so sessions sharing the instance cannot both pass the vote lock.
package redis
