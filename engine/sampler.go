package engine

import (
	"math"
	"math/rand"
)

// =============================================================================
// DISTRIBUTION SAMPLER
// =============================================================================

// PayContext supplies the reference amounts for percent_of_pay specs.
type PayContext struct {
	LastPay    float64
	HasLastPay bool
	DefaultPay float64
}

// Sampler draws magnitudes from amount specifications. The caller applies
// the category sign.
type Sampler struct {
	rng *rand.Rand
}

func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Draw returns a non-negative magnitude. Unknown distributions fall back to
// |Value| (zero when unset) so one bad scenario never aborts a day.
func (s *Sampler) Draw(spec AmountSpec, ctx PayContext) float64 {
	var v float64
	switch spec.Dist {
	case DistFixed, "":
		v = math.Abs(spec.Value)
	case DistUniform:
		v = spec.Low + s.rng.Float64()*(spec.High-spec.Low)
	case DistNormal:
		v = spec.Mean + s.rng.NormFloat64()*spec.SD
		v = math.Max(v, floatOr(spec.Min, 0))
	case DistLognormal:
		v = s.lognormal(spec)
	case DistPercentOfPay:
		pay := ctx.DefaultPay
		if ctx.HasLastPay {
			pay = ctx.LastPay
		}
		pct := spec.Pct
		if pct == 0 {
			pct = 0.2
		}
		v = pct * math.Abs(pay)
	case DistChoice:
		v = s.choice(spec.Options, spec.Weights)
	default:
		v = math.Abs(spec.Value)
	}
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

// lognormal converts the arithmetic mean and standard deviation into the
// underlying normal's parameters before sampling.
func (s *Sampler) lognormal(spec AmountSpec) float64 {
	mean := math.Max(spec.Mean, 1e-6)
	ratio := math.Log(1 + math.Pow(spec.Sigma/mean, 2))
	mu := math.Log(mean) - 0.5*ratio
	sd := math.Sqrt(math.Max(ratio, 1e-9))

	v := math.Exp(mu + sd*s.rng.NormFloat64())
	v = math.Max(v, floatOr(spec.Min, 0))
	if spec.Max != nil {
		v = math.Min(v, *spec.Max)
	}
	return v
}

func (s *Sampler) choice(options, weights []float64) float64 {
	if len(options) == 0 {
		return 0
	}
	if len(weights) != len(options) {
		return math.Abs(options[s.rng.Intn(len(options))])
	}

	var total float64
	for _, w := range weights {
		total += math.Max(w, 0)
	}
	if total <= 0 {
		return math.Abs(options[s.rng.Intn(len(options))])
	}

	r := s.rng.Float64() * total
	for i, w := range weights {
		r -= math.Max(w, 0)
		if r < 0 {
			return math.Abs(options[i])
		}
	}
	return math.Abs(options[len(options)-1])
}

// Uniform draws from [low, high].
func (s *Sampler) Uniform(low, high float64) float64 {
	return low + s.rng.Float64()*(high-low)
}

// Bernoulli succeeds with probability p.
func (s *Sampler) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
