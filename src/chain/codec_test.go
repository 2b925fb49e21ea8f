package chain

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestSnapshotRestore(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Append(ShipmentPayload{
		ShipmentID: "S1",
		DrugName:   "InsulinX",
		Reading:    Reading{Temperature: 5, Humidity: 40},
		RecordedAt: "Tue Nov 14 22:13:20 2023",
	})
	require.NoError(t, err)
	_, err = l.Append(shipment("S2", "Amoxil", 2.75, 31.5))
	require.NoError(t, err)

	data, err := l.MarshalBinary()
	require.NoError(t, err)

	restored, err := RestoreWithConfig(data, Config{Clock: stepClock(1800000000)})
	require.NoError(t, err)
	require.Equal(t, l.Len(), restored.Len())

	var want, got []Block
	for b := range l.All() {
		want = append(want, b)
	}
	for b := range restored.All() {
		got = append(got, b)
	}
	assert.Equal(t, want, got)
	assert.IsType(t, GenesisPayload{}, got[0].Payload())
	assert.IsType(t, ShipmentPayload{}, got[1].Payload())

	res := restored.Validate()
	require.True(t, res.Valid)

	found, err := restored.Find(want[1].Fingerprint())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), found.Index())

	// the restored ledger keeps growing from its tip
	b, err := restored.Append(shipment("S3", "Heparin", 6, 44))
	require.NoError(t, err)
	assert.Equal(t, want[2].Fingerprint(), b.PrevFingerprint())
	assert.Equal(t, int64(1800000000), b.CreatedAt())
	assert.True(t, restored.Validate().Valid)
}

func TestSnapshotTamperDetected(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Append(shipment("S1", "InsulinX", 5, 40))
	require.NoError(t, err)
	_, err = l.Append(shipment("S2", "Amoxil", 7, 35))
	require.NoError(t, err)

	data, err := l.MarshalBinary()
	require.NoError(t, err)

	// same length keeps the framing intact
	forged := bytes.Replace(data, []byte("InsulinX"), []byte("Tampered"), 1)
	require.NotEqual(t, data, forged)

	restored, err := Restore(forged)
	require.NoError(t, err)
	p, ok := restored.blocks[1].Payload().(ShipmentPayload)
	require.True(t, ok)
	assert.Equal(t, "Tampered", p.DrugName)

	res := restored.Validate()
	require.False(t, res.Valid)
	assert.Equal(t, 1, res.FirstBroken)
	assert.Equal(t, ViolationContent, res.Violation.Kind)
}

func TestSnapshotUndecodablePayloadIsHashedVerbatim(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Append(shipment("S1", "InsulinX", 5, 40))
	require.NoError(t, err)

	data, err := l.MarshalBinary()
	require.NoError(t, err)

	// "°C" -> "°F" leaves the JSON valid but the unit unknown
	forged := bytes.Replace(data, []byte("°C"), []byte("°F"), 1)
	restored, err := Restore(forged)
	require.NoError(t, err)

	raw, ok := restored.blocks[1].Payload().(RawPayload)
	require.True(t, ok, "want RawPayload, got %T", restored.blocks[1].Payload())
	assert.Equal(t, KindShipment, raw.Kind())

	res := restored.Validate()
	require.False(t, res.Valid)
	assert.Equal(t, 1, res.FirstBroken)
}

func TestRestoreMalformed(t *testing.T) {
	valid, err := newTestLedger(t).MarshalBinary()
	require.NoError(t, err)

	frame := func(msg []byte) []byte {
		hdr := make([]byte, frameHeaderSize)
		binary.BigEndian.PutUint32(hdr, uint32(len(msg)))
		return append(hdr, msg...)
	}
	missingFingerprint := protowire.AppendTag(nil, fieldIndex, protowire.VarintType)
	missingFingerprint = protowire.AppendVarint(missingFingerprint, 0)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short header", data: []byte{0, 0}},
		{name: "frame overruns input", data: valid[:len(valid)-1]},
		{name: "garbage message", data: frame([]byte{0xff, 0xff, 0xff})},
		{name: "missing fields", data: frame(missingFingerprint)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Restore(tc.data)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestRestoreSkipsUnknownFields(t *testing.T) {
	l := NewWithConfig(Config{Clock: func() time.Time { return time.Unix(1700000000, 0) }})
	data, err := l.MarshalBinary()
	require.NoError(t, err)

	msg := data[frameHeaderSize:]
	msg = protowire.AppendTag(msg, 15, protowire.BytesType)
	msg = protowire.AppendString(msg, "annotation")
	hdr := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(hdr, uint32(len(msg)))

	restored, err := Restore(append(hdr, msg...))
	require.NoError(t, err)
	assert.Equal(t, l.Tip(), restored.Tip())
	assert.True(t, restored.Validate().Valid)
}
