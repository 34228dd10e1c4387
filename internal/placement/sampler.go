package placement

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Params controls the sampling distribution. Offsets are normal per axis and
// clamped to [Min, Max]; rotation is a uniform integer in [RotationMin, RotationMax].
type Params struct {
	MeanX       float64
	MeanY       float64
	StdDevX     float64
	StdDevY     float64
	MinX        float64
	MaxX        float64
	MinY        float64
	MaxY        float64
	RotationMin int
	RotationMax int
}

// DefaultParams returns the distribution used for the picnic layout.
func DefaultParams() Params {
	return Params{
		MeanX:       0.25,
		MeanY:       0.3,
		StdDevX:     0.1625,
		StdDevY:     0.1625,
		MinX:        0,
		MaxX:        0.71,
		MinY:        0,
		MaxY:        0.82,
		RotationMin: 0,
		RotationMax: 360,
	}
}

// Override pins individual axes. Nil fields are sampled.
type Override struct {
	X        *float64
	Y        *float64
	Rotation *float64
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithParams replaces the sampling distribution. Inverted bounds are
// swapped.
func WithParams(params Params) Option {
	return func(s *Sampler) {
		s.params = params.normalized()
	}
}

func (p Params) normalized() Params {
	if p.MinX > p.MaxX {
		p.MinX, p.MaxX = p.MaxX, p.MinX
	}
	if p.MinY > p.MaxY {
		p.MinY, p.MaxY = p.MaxY, p.MinY
	}
	if p.RotationMin > p.RotationMax {
		p.RotationMin, p.RotationMax = p.RotationMax, p.RotationMin
	}
	return p
}

// WithSource seeds the sampler from a specific random source.
func WithSource(src rand.Source) Option {
	return func(s *Sampler) {
		if src != nil {
			s.rng = rand.New(src)
		}
	}
}

// WithSeed seeds the sampler deterministically.
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sampler draws card positions. It is safe for concurrent use.
type Sampler struct {
	mu     sync.Mutex
	rng    *rand.Rand
	params Params
}

// NewSampler constructs a Sampler with default parameters and a time-seeded source.
func NewSampler(opts ...Option) *Sampler {
	seed := uint64(time.Now().UnixNano())
	s := &Sampler{
		rng:    rand.New(rand.NewPCG(seed, seed>>1)),
		params: DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Params returns the active distribution.
func (s *Sampler) Params() Params {
	return s.params
}

// Sample draws a fully randomized Position.
func (s *Sampler) Sample() Position {
	return s.SampleWith(Override{})
}

// SampleWith draws a Position, taking any overridden axis verbatim. Explicit
// values skip clamping.
func (s *Sampler) SampleWith(override Override) Position {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.params
	x := clamp(s.normal(p.MeanX, p.StdDevX), p.MinX, p.MaxX)
	y := clamp(s.normal(p.MeanY, p.StdDevY), p.MinY, p.MaxY)
	rotation := float64(p.RotationMin + s.rng.IntN(p.RotationMax-p.RotationMin+1))

	if override.X != nil {
		x = *override.X
	}
	if override.Y != nil {
		y = *override.Y
	}
	if override.Rotation != nil {
		rotation = *override.Rotation
	}
	return Position{X: x, Y: y, Rotation: rotation}
}

// normal applies the Box-Muller transform to two uniform draws. r1 is taken
// from (0, 1] so the logarithm stays finite.
func (s *Sampler) normal(mean, stddev float64) float64 {
	r1 := 1 - s.rng.Float64()
	r2 := s.rng.Float64()
	return math.Sqrt(-2*math.Log(r1))*math.Cos(2*math.Pi*r2)*stddev + mean
}

func clamp(value, lower, upper float64) float64 {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
