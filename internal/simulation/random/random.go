// Package random provides the two kinds of randomness agents use: a seeded
// generator each agent owns for attributes drawn once at creation, and pure
// hashed draws for per-period decisions, so a decision depends only on
// (agent, period, salt) and never on the order agents are visited.
package random

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"
)

// Source is an agent-owned generator.
type Source interface {
	Float64() float64
	NormFloat64() float64
}

// Rand is the default Source, a PCG generator seeded from one integer.
type Rand struct {
	r *rand.Rand
}

// pcgStream separates the second PCG word from the seed.
const pcgStream = 0x9e3779b97f4a7c15

// New returns a generator whose sequence is fixed by seed.
func New(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^pcgStream))}
}

func (r *Rand) Float64() float64     { return r.r.Float64() }
func (r *Rand) NormFloat64() float64 { return r.r.NormFloat64() }

// IntN returns a value in [0, n).
func (r *Rand) IntN(n int) int { return r.r.IntN(n) }

// Shuffle permutes n elements through swap.
func (r *Rand) Shuffle(n int, swap func(i, j int)) { r.r.Shuffle(n, swap) }

// Uniform draws from [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// Normal draws from N(mean, sd²).
func Normal(src Source, mean, sd float64) float64 {
	return mean + sd*src.NormFloat64()
}

// LogNormal draws exp(N(mu, sigma²)).
func LogNormal(src Source, mu, sigma float64) float64 {
	return math.Exp(Normal(src, mu, sigma))
}

// Bernoulli reports true with probability p.
func Bernoulli(src Source, p float64) bool {
	return src.Float64() < p
}

// Salt separates independent decisions made for the same agent and period.
type Salt uint64

const (
	SaltPropensityNoise Salt = 111
	SaltApply           Salt = 333
	SaltDocumentation   Salt = 444
	SaltDirection       Salt = 555
	SaltError           Salt = 777
	SaltFraud           Salt = 999
)

// Draw returns a value in [0, 1) determined entirely by its arguments.
func Draw(agentID int64, period int, salt Salt) float64 {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(agentID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(period)))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(salt))
	return float64(xxhash.Sum64(buf[:])>>11) / (1 << 53)
}

// DrawUniform maps Draw onto [lo, hi).
func DrawUniform(agentID int64, period int, salt Salt, lo, hi float64) float64 {
	return lo + (hi-lo)*Draw(agentID, period, salt)
}

// DrawNormal returns a standard normal value determined by its arguments,
// using Box-Muller over two salted draws.
func DrawNormal(agentID int64, period int, salt Salt) float64 {
	u1 := 1 - Draw(agentID, period, salt<<1)
	u2 := Draw(agentID, period, salt<<1|1)
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
