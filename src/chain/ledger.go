// Package chain implements a tamper-evident, hash-chained ledger of shipment
// records and the validation that detects any change to recorded history.
package chain

import (
	"fmt"
	"iter"
	"sync"
	"time"
)

// Config controls a Ledger's environment.
type Config struct {
	Clock func() time.Time // source of created_at; defaults to time.Now
}

// DefaultConfig returns a Config using the wall clock.
func DefaultConfig() Config {
	return Config{Clock: time.Now}
}

// Ledger is an in-memory, append-only sequence of blocks. Blocks are stored
// in sequence order and indexed by fingerprint. A single write lock
// serializes Append; readers see the chain either before or after an append.
type Ledger struct {
	mu            sync.RWMutex
	blocks        []Block
	byFingerprint map[string]uint64
	clock         func() time.Time
}

// New creates a ledger holding only the genesis block, stamped with the
// wall clock.
func New() *Ledger {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a ledger holding only the genesis block.
func NewWithConfig(cfg Config) *Ledger {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	genesis, err := NewBlock(0, GenesisPrevFingerprint, cfg.Clock().Unix(), GenesisPayload{})
	if err != nil {
		// GenesisPayload renders a constant.
		panic(fmt.Sprintf("chain: genesis block: %v", err))
	}
	l := &Ledger{
		blocks:        make([]Block, 0, 16),
		byFingerprint: make(map[string]uint64),
		clock:         cfg.Clock,
	}
	l.push(genesis)
	return l
}

func (l *Ledger) push(b Block) {
	l.blocks = append(l.blocks, b)
	l.byFingerprint[b.fingerprint] = b.index
}

// Append links p to the current tip and returns the new block. On a
// *SerializationError the ledger is unchanged.
func (l *Ledger) Append(p Payload) (Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tip := l.blocks[len(l.blocks)-1]
	b, err := NewBlock(tip.index+1, tip.fingerprint, l.clock().Unix(), p)
	if err != nil {
		return Block{}, err
	}
	l.push(b)
	return b, nil
}

// Len returns the number of blocks, genesis included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Tip returns the most recently appended block.
func (l *Ledger) Tip() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blocks[len(l.blocks)-1]
}

// At returns the block with the given sequence index.
func (l *Ledger) At(index uint64) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index >= uint64(len(l.blocks)) {
		return Block{}, fmt.Errorf("index %d: %w", index, ErrNotFound)
	}
	return l.blocks[index], nil
}

// Find returns the block carrying fingerprint fp.
func (l *Ledger) Find(fp string) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byFingerprint[fp]
	if !ok || idx >= uint64(len(l.blocks)) {
		return Block{}, fmt.Errorf("fingerprint %s: %w", fp, ErrNotFound)
	}
	return l.blocks[idx], nil
}

// All yields the blocks in sequence order. Each iteration walks the chain as
// it was when the iteration started, so the sequence can be ranged over
// again.
func (l *Ledger) All() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, b := range l.snapshot() {
			if !yield(b) {
				return
			}
		}
	}
}

// snapshot returns the current block slice. Appends never rewrite existing
// elements, so the returned prefix stays stable.
func (l *Ledger) snapshot() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.blocks[:len(l.blocks):len(l.blocks)]
}
