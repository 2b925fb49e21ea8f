package chain

import "strconv"

// Checkpoint is a trusted baseline produced by a successful validation: the
// chain length that was checked and the fingerprint of its last block.
type Checkpoint struct {
	Length int
	Tip    string
}

// IsZero reports whether cp carries no baseline.
func (cp Checkpoint) IsZero() bool {
	return cp.Length == 0 && cp.Tip == ""
}

// ValidationResult is the outcome of a chain walk. Validation stops at the
// first broken block.
type ValidationResult struct {
	Valid       bool
	FirstBroken int // index of the first broken block, -1 when valid
	Violation   *IntegrityViolation
	Checkpoint  Checkpoint // set only when Valid
	Checked     int        // number of blocks examined
}

// Err returns the violation as an error, or nil for a valid chain.
func (r ValidationResult) Err() error {
	if r.Violation == nil {
		return nil
	}
	return r.Violation
}

// Validate recomputes every block's fingerprint and checks every link,
// starting at genesis.
func (l *Ledger) Validate() ValidationResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return validateRange(l.blocks, 0)
}

// ValidateFrom checks only the blocks appended after cp. The block at
// cp.Length-1 must still carry cp.Tip; otherwise, or when cp does not fit
// this ledger, the whole chain is validated.
func (l *Ledger) ValidateFrom(cp Checkpoint) ValidationResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if cp.Length <= 0 || cp.Length > len(l.blocks) || l.blocks[cp.Length-1].fingerprint != cp.Tip {
		return validateRange(l.blocks, 0)
	}
	return validateRange(l.blocks, cp.Length)
}

func validateRange(blocks []Block, start int) ValidationResult {
	checked := 0
	for i := start; i < len(blocks); i++ {
		checked++
		if v := checkBlock(blocks, i); v != nil {
			return ValidationResult{
				Valid:       false,
				FirstBroken: i,
				Violation:   v,
				Checked:     checked,
			}
		}
	}
	tip := blocks[len(blocks)-1]
	return ValidationResult{
		Valid:       true,
		FirstBroken: -1,
		Checkpoint:  Checkpoint{Length: len(blocks), Tip: tip.fingerprint},
		Checked:     checked,
	}
}

// checkBlock tests block i for self-consistency, linkage to block i-1 and
// position. Genesis has no link to check.
func checkBlock(blocks []Block, i int) *IntegrityViolation {
	b := blocks[i]

	expected, err := b.recompute()
	if err != nil {
		return &IntegrityViolation{Index: uint64(i), Kind: ViolationContent, Actual: b.fingerprint, Cause: err}
	}
	if expected != b.fingerprint {
		return &IntegrityViolation{Index: uint64(i), Kind: ViolationContent, Expected: expected, Actual: b.fingerprint}
	}

	if i > 0 && b.prev != blocks[i-1].fingerprint {
		return &IntegrityViolation{Index: uint64(i), Kind: ViolationLink, Expected: blocks[i-1].fingerprint, Actual: b.prev}
	}

	if b.index != uint64(i) {
		return &IntegrityViolation{
			Index:    uint64(i),
			Kind:     ViolationIndex,
			Expected: strconv.Itoa(i),
			Actual:   strconv.FormatUint(b.index, 10),
		}
	}
	return nil
}
