// Package sorter orders a period's application batch before routing. Order
// decides who meets exhausted capacity in a saturated queue.
package sorter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Strategy names an ordering policy.
type Strategy string

const (
	StrategyFCFS         Strategy = "fcfs"
	StrategySimpleFirst  Strategy = "simple_first"
	StrategyComplexFirst Strategy = "complex_first"
	StrategyRandom       Strategy = "random"
	StrategyNeedBased    Strategy = "need_based"
)

func Strategies() []Strategy {
	return []Strategy{StrategyFCFS, StrategySimpleFirst, StrategyComplexFirst, StrategyRandom, StrategyNeedBased}
}

func (s Strategy) IsValid() bool {
	return slices.Contains(Strategies(), s)
}

// ParseStrategy accepts any casing. The empty string means fcfs.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return StrategyFCFS, nil
	}
	st := Strategy(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown sorting strategy: "+s)
	}
	return st, nil
}

// Policy reorders an application batch. Implementations must not modify
// the input slice.
type Policy interface {
	Name() string
	Sort(apps []*models.Application) []*models.Application
}

// IncomeLookup returns a seeker's true annual income.
type IncomeLookup func(seekerID int64) (income float64, ok bool)

// Usage counts the work a Sorter has done.
type Usage struct {
	Batches      int `json:"batches"`
	Applications int `json:"applications"`
}

// Sorter is the built-in Policy.
type Sorter struct {
	strategy Strategy
	rng      *random.Rand
	income   IncomeLookup
	usage    Usage
}

type Option func(*Sorter)

// WithSeed seeds the random strategy's shuffle.
func WithSeed(seed int64) Option {
	return func(s *Sorter) {
		s.rng = random.New(seed)
	}
}

// WithIncomeLookup supplies true incomes for need-based ordering.
func WithIncomeLookup(fn IncomeLookup) Option {
	return func(s *Sorter) {
		s.income = fn
	}
}

func New(strategy Strategy, opts ...Option) (*Sorter, error) {
	if !strategy.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown sorting strategy: "+string(strategy))
	}
	s := &Sorter{strategy: strategy}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = random.New(0)
	}
	return s, nil
}

func (s *Sorter) Name() string       { return string(s.strategy) }
func (s *Sorter) Strategy() Strategy { return s.strategy }
func (s *Sorter) Usage() Usage       { return s.usage }

// Sort returns a reordered copy of apps.
func (s *Sorter) Sort(apps []*models.Application) []*models.Application {
	out := slices.Clone(apps)
	s.usage.Batches++
	s.usage.Applications += len(out)

	switch s.strategy {
	case StrategySimpleFirst:
		slices.SortStableFunc(out, func(a, b *models.Application) int {
			return cmp.Compare(a.Complexity, b.Complexity)
		})
	case StrategyComplexFirst:
		slices.SortStableFunc(out, func(a, b *models.Application) int {
			return cmp.Compare(b.Complexity, a.Complexity)
		})
	case StrategyRandom:
		s.rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	case StrategyNeedBased:
		s.sortByNeed(out)
	}
	return out
}

// sortByNeed puts the lowest true incomes first and unknown seekers last.
func (s *Sorter) sortByNeed(apps []*models.Application) {
	if s.income == nil {
		return
	}
	type keyed struct {
		income float64
		known  bool
	}
	keys := make(map[int64]keyed, len(apps))
	for _, a := range apps {
		if _, done := keys[a.SeekerID]; done {
			continue
		}
		income, ok := s.income(a.SeekerID)
		keys[a.SeekerID] = keyed{income: income, known: ok}
	}
	slices.SortStableFunc(apps, func(a, b *models.Application) int {
		ka, kb := keys[a.SeekerID], keys[b.SeekerID]
		switch {
		case ka.known && !kb.known:
			return -1
		case !ka.known && kb.known:
			return 1
		case !ka.known && !kb.known:
			return 0
		}
		return cmp.Compare(ka.income, kb.income)
	})
}

// KeyFunc maps an application to an ascending sort key.
type KeyFunc func(*models.Application) float64

type keyPolicy struct {
	name string
	key  KeyFunc
}

// ByKey adapts a pure key function into a stable Policy.
func ByKey(name string, key KeyFunc) Policy {
	return keyPolicy{name: name, key: key}
}

func (p keyPolicy) Name() string { return p.name }

func (p keyPolicy) Sort(apps []*models.Application) []*models.Application {
	out := slices.Clone(apps)
	slices.SortStableFunc(out, func(a, b *models.Application) int {
		return cmp.Compare(p.key(a), p.key(b))
	})
	return out
}
