// Package seed derives reproducible random streams from a building seed.
//
// Every concern that needs randomness asks for its own stream by name, so that
// e.g. window placement and room splitting vary independently while the whole
// building stays reproducible under one top-level seed.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strconv"
)

// Stream is a deterministic pseudo-random stream for one (seed, subsystem) pair.
// It is not safe for concurrent use.
type Stream struct {
	seed      int64
	subsystem string
	rng       *rand.Rand
}

// Derive returns the 64-bit sub-seed for (seed, subsystem): the first eight bytes,
// little-endian, of SHA-256("{seed}:{subsystem}").
func Derive(seed int64, subsystem string) uint64 {
	h := sha256.Sum256([]byte(strconv.FormatInt(seed, 10) + ":" + subsystem))
	return binary.LittleEndian.Uint64(h[:8])
}

// For returns the stream for subsystem under seed.
func For(seed int64, subsystem string) *Stream {
	sub := Derive(seed, subsystem)
	return &Stream{
		seed:      seed,
		subsystem: subsystem,
		rng:       rand.New(rand.NewPCG(sub, 0)),
	}
}

// Seed returns the top-level seed the stream was derived from.
func (s *Stream) Seed() int64 { return s.seed }

// Subsystem returns the stream's subsystem name.
func (s *Stream) Subsystem() string { return s.subsystem }

// Float64 returns a value in [0, 1).
func (s *Stream) Float64() float64 { return s.rng.Float64() }

// IntN returns a value in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int { return s.rng.IntN(n) }

// Uniform returns a value in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Perm returns a pseudo-random permutation of [0, n).
func (s *Stream) Perm(n int) []int { return s.rng.Perm(n) }

// Pick returns one element of options. It panics on an empty slice.
func Pick[T any](s *Stream, options []T) T {
	return options[s.IntN(len(options))]
}
