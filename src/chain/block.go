package chain

import (
	"fmt"
	"time"
)

// Block is one immutable entry of the ledger. Its fields are only set by
// NewBlock, so the fingerprint always covers the other four fields.
type Block struct {
	index       uint64
	prev        string
	createdAt   int64
	payload     Payload
	fingerprint string
}

// NewBlock builds a block and computes its fingerprint. The only failure is
// a payload that cannot be serialized.
func NewBlock(index uint64, prev string, createdAt int64, p Payload) (Block, error) {
	fp, err := fingerprint(index, prev, createdAt, p)
	if err != nil {
		return Block{}, err
	}
	return Block{
		index:       index,
		prev:        prev,
		createdAt:   createdAt,
		payload:     p,
		fingerprint: fp,
	}, nil
}

func (b Block) Index() uint64           { return b.index }
func (b Block) PrevFingerprint() string { return b.prev }
func (b Block) CreatedAt() int64        { return b.createdAt }
func (b Block) Payload() Payload        { return b.payload }
func (b Block) Fingerprint() string     { return b.fingerprint }

// Time returns CreatedAt as a local time.Time.
func (b Block) Time() time.Time {
	return time.Unix(b.createdAt, 0)
}

// IsGenesis reports whether b sits at the head of the chain.
func (b Block) IsGenesis() bool {
	return b.index == 0 && b.prev == GenesisPrevFingerprint
}

// recompute re-derives the fingerprint from the stored fields.
func (b Block) recompute() (string, error) {
	return fingerprint(b.index, b.prev, b.createdAt, b.payload)
}

func (b Block) String() string {
	return fmt.Sprintf("Block %d [Hash: %s] Previous Hash: %s Data: %v Timestamp: %s",
		b.index, b.fingerprint, b.prev, b.payload, b.Time().Format(time.ANSIC))
}
