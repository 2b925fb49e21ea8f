package sensors

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/danmuck/pharma_chain/src/chain"
)

const (
	DefaultTempMinC    = 2  // cold-chain lower bound
	DefaultTempMaxC    = 8  // cold-chain upper bound
	DefaultHumidityMin = 30 // percent
	DefaultHumidityMax = 50 // percent
)

// Source supplies environmental readings for a shipment.
type Source interface {
	Read() (chain.Reading, error)
}

// Config bounds the values drawn by a Random source. Bounds are inclusive.
type Config struct {
	TempMinC    int
	TempMaxC    int
	HumidityMin int
	HumidityMax int
	Seed        uint64 // zero draws a fresh seed
}

// DefaultConfig returns the 2-8°C / 30-50% ranges of a cold-chain shipment.
func DefaultConfig() Config {
	return Config{
		TempMinC:    DefaultTempMinC,
		TempMaxC:    DefaultTempMaxC,
		HumidityMin: DefaultHumidityMin,
		HumidityMax: DefaultHumidityMax,
	}
}

// Random simulates a sensor by drawing whole-number readings uniformly from
// the configured ranges.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
	cfg Config
}

func NewRandom(cfg Config) (*Random, error) {
	if cfg.TempMinC > cfg.TempMaxC {
		return nil, fmt.Errorf("temperature range [%d, %d] is empty", cfg.TempMinC, cfg.TempMaxC)
	}
	if cfg.HumidityMin > cfg.HumidityMax {
		return nil, fmt.Errorf("humidity range [%d, %d] is empty", cfg.HumidityMin, cfg.HumidityMax)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Random{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		cfg: cfg,
	}, nil
}

func (r *Random) Read() (chain.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return chain.Reading{
		Temperature: float64(r.between(r.cfg.TempMinC, r.cfg.TempMaxC)),
		Humidity:    float64(r.between(r.cfg.HumidityMin, r.cfg.HumidityMax)),
	}, nil
}

func (r *Random) between(lo, hi int) int {
	return lo + r.rng.IntN(hi-lo+1)
}

// Fixed always returns the same reading.
type Fixed chain.Reading

func (f Fixed) Read() (chain.Reading, error) {
	return chain.Reading(f), nil
}

// Func adapts a plain function to a Source.
type Func func() (chain.Reading, error)

func (f Func) Read() (chain.Reading, error) {
	return f()
}
