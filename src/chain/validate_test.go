package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFromChecksOnlySuffix(t *testing.T) {
	l := newTestLedger(t)
	appendN(t, l, 5)

	base := l.Validate()
	require.True(t, base.Valid)
	assert.Equal(t, Checkpoint{Length: 6, Tip: l.Tip().Fingerprint()}, base.Checkpoint)
	assert.Equal(t, 6, base.Checked)

	appendN(t, l, 3)
	res := l.ValidateFrom(base.Checkpoint)
	require.True(t, res.Valid)
	assert.Equal(t, 3, res.Checked)
	assert.Equal(t, Checkpoint{Length: 9, Tip: l.Tip().Fingerprint()}, res.Checkpoint)

	// nothing new to check
	again := l.ValidateFrom(res.Checkpoint)
	require.True(t, again.Valid)
	assert.Equal(t, 0, again.Checked)
}

func TestValidateFromAgreesWithValidate(t *testing.T) {
	l := newTestLedger(t)
	appendN(t, l, 3)
	cp := l.Validate().Checkpoint
	appendN(t, l, 3)

	l.blocks[5].createdAt++

	full := l.Validate()
	incr := l.ValidateFrom(cp)
	require.False(t, full.Valid)
	require.False(t, incr.Valid)
	assert.Equal(t, full.FirstBroken, incr.FirstBroken)
	assert.Equal(t, 5, incr.FirstBroken)
}

func TestValidateFromFallsBackToFullWalk(t *testing.T) {
	tests := []struct {
		name   string
		cp     func(l *Ledger) Checkpoint
		tamper func(l *Ledger)
		broken int
	}{
		{
			name:   "zero checkpoint",
			cp:     func(*Ledger) Checkpoint { return Checkpoint{} },
			tamper: func(l *Ledger) { l.blocks[1].createdAt++ },
			broken: 1,
		},
		{
			name:   "checkpoint longer than ledger",
			cp:     func(l *Ledger) Checkpoint { return Checkpoint{Length: 99, Tip: l.Tip().Fingerprint()} },
			tamper: func(l *Ledger) { l.blocks[2].createdAt++ },
			broken: 2,
		},
		{
			name: "baseline block rewritten",
			cp:   func(l *Ledger) Checkpoint { return Checkpoint{Length: 3, Tip: l.blocks[2].fingerprint} },
			tamper: func(l *Ledger) {
				b := l.blocks[2]
				forged, _ := NewBlock(b.index, b.prev, b.createdAt+60, b.payload)
				l.blocks[2] = forged
			},
			broken: 3,
		},
		{
			name:   "history before baseline tampered",
			cp:     func(l *Ledger) Checkpoint { return Checkpoint{Length: 3, Tip: "stale"} },
			tamper: func(l *Ledger) { l.blocks[1].createdAt++ },
			broken: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLedger(t)
			appendN(t, l, 4)
			cp := tc.cp(l)
			tc.tamper(l)

			res := l.ValidateFrom(cp)
			require.False(t, res.Valid)
			assert.Equal(t, tc.broken, res.FirstBroken)
		})
	}
}

func TestValidateFromTrustsBaseline(t *testing.T) {
	l := newTestLedger(t)
	appendN(t, l, 4)
	cp := l.Validate().Checkpoint

	// Tampering strictly inside the trusted prefix is the full walk's job.
	l.blocks[1].createdAt++
	assert.True(t, l.ValidateFrom(cp).Valid)
	assert.False(t, l.Validate().Valid)
}
