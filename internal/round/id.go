package round

import (
	"crypto/rand"
	"io"
)

const (
	voteIDLength   = 10
	voteIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	// Largest multiple of the alphabet size that fits in a byte. Bytes at or above it are
	// drawn again so every character is equally likely.
	voteIDByteLimit = 256 - 256%len(voteIDAlphabet)
)

// NewVoteID generates a short lowercase alphanumeric display id.
// It is not a uniqueness key; collisions are harmless.
func NewVoteID() string {
	return voteIDFrom(rand.Reader)
}

func voteIDFrom(r io.Reader) string {
	out := make([]byte, 0, voteIDLength)
	buf := make([]byte, voteIDLength)
	for len(out) < voteIDLength {
		if _, err := io.ReadFull(r, buf); err != nil {
			panic("round: random source failed: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= voteIDByteLimit {
				continue
			}
			out = append(out, voteIDAlphabet[int(b)%len(voteIDAlphabet)])
			if len(out) == voteIDLength {
				break
			}
		}
	}
	return string(out)
}
