// Package rng implements a splittable pseudo-random number generator.
//
// The generator is a SplitMix-style stream: a 64-bit seed advanced by a
// per-stream odd gamma, mixed on output. Split derives a statistically
// independent child stream from the parent's state, consuming one draw
// from the parent. Identical seeds yield identical streams, and the
// sequence of Split calls fully determines every child stream, which is
// what makes tree training reproducible: each random decision during
// growth is assigned a fixed logical position in the fork order.
package rng

import "math/bits"

const goldenGamma = 0x9e3779b97f4a7c15

// Splittable is a deterministic random stream supporting Split.
// The zero value is not usable; construct with New or Split.
type Splittable struct {
	seed  uint64
	gamma uint64
}

// New returns a stream seeded with the given value.
func New(seed int64) *Splittable {
	return &Splittable{seed: mix64(uint64(seed)), gamma: mixGamma(uint64(seed) + goldenGamma)}
}

func (r *Splittable) nextSeed() uint64 {
	r.seed += r.gamma
	return r.seed
}

// Split advances this stream by one draw and returns a new stream whose
// output sequence is independent of the parent's subsequent output.
func (r *Splittable) Split() *Splittable {
	return &Splittable{seed: mix64(r.nextSeed()), gamma: mixGamma(r.nextSeed())}
}

// Uint64 returns the next 64 bits of the stream.
func (r *Splittable) Uint64() uint64 {
	return mix64(r.nextSeed())
}

// Int returns a uniform value in [0, bound). Panics if bound <= 0.
func (r *Splittable) Int(bound int) int {
	if bound <= 0 {
		panic("rng: bound must be positive")
	}
	b := int32(bound)
	v := int32(mix32(r.nextSeed()))
	m := b - 1
	if b&m == 0 {
		// Power of two.
		return int(v & m)
	}
	// Reject over-represented candidates.
	for u := int32(uint32(v) >> 1); ; u = int32(mix32(r.nextSeed()) >> 1) {
		v = u % b
		if u+m-v >= 0 {
			break
		}
	}
	return int(v)
}

// Float64 returns a uniform value in [0, 1).
func (r *Splittable) Float64() float64 {
	return float64(r.Uint64()>>11) * (1.0 / (1 << 53))
}

// Perm shuffles p in place using a descending Fisher-Yates pass.
func (r *Splittable) Perm(p []int) {
	for i := len(p); i > 1; i-- {
		j := r.Int(i)
		p[i-1], p[j] = p[j], p[i-1]
	}
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func mix32(z uint64) uint32 {
	z = (z ^ (z >> 33)) * 0x62a9d9ed799705f5
	return uint32(((z ^ (z >> 28)) * 0xcb24d0a5c88c35b3) >> 32)
}

func mixGamma(z uint64) uint64 {
	z = (z ^ (z >> 33)) * 0xff51afd7ed558ccd
	z = (z ^ (z >> 33)) * 0xc4ceb9fe1a85ec53
	z = (z ^ (z >> 33)) | 1
	if bits.OnesCount64(z^(z>>1)) < 24 {
		z ^= 0xaaaaaaaaaaaaaaaa
	}
	return z
}
