package chain

import (
	"encoding/binary"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Snapshot field numbers. One protobuf message per block:
//
//	1 index (varint) | 2 prev (bytes) | 3 created_at (zigzag varint)
//	4 kind (bytes)   | 5 payload (canonical bytes) | 6 fingerprint (bytes)
const (
	fieldIndex       protowire.Number = 1
	fieldPrev        protowire.Number = 2
	fieldCreatedAt   protowire.Number = 3
	fieldKind        protowire.Number = 4
	fieldPayload     protowire.Number = 5
	fieldFingerprint protowire.Number = 6

	frameHeaderSize = 4
)

// MarshalBinary encodes the chain as a sequence of length-prefixed protobuf
// messages. Payloads are stored in their canonical form, so a restored chain
// hashes the same bytes.
func (l *Ledger) MarshalBinary() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []byte
	for _, b := range l.blocks {
		msg, err := encodeBlock(b)
		if err != nil {
			return nil, fmt.Errorf("encode block %d: %w", b.index, err)
		}
		hdr := make([]byte, frameHeaderSize)
		binary.BigEndian.PutUint32(hdr, uint32(len(msg)))
		out = append(out, hdr...)
		out = append(out, msg...)
	}
	return out, nil
}

func encodeBlock(b Block) ([]byte, error) {
	data, err := b.payload.CanonicalBytes()
	if err != nil {
		return nil, &SerializationError{Kind: b.payload.Kind(), Err: err}
	}

	var msg []byte
	msg = protowire.AppendTag(msg, fieldIndex, protowire.VarintType)
	msg = protowire.AppendVarint(msg, b.index)
	msg = protowire.AppendTag(msg, fieldPrev, protowire.BytesType)
	msg = protowire.AppendString(msg, b.prev)
	msg = protowire.AppendTag(msg, fieldCreatedAt, protowire.VarintType)
	msg = protowire.AppendVarint(msg, protowire.EncodeZigZag(b.createdAt))
	msg = protowire.AppendTag(msg, fieldKind, protowire.BytesType)
	msg = protowire.AppendString(msg, b.payload.Kind())
	msg = protowire.AppendTag(msg, fieldPayload, protowire.BytesType)
	msg = protowire.AppendBytes(msg, data)
	msg = protowire.AppendTag(msg, fieldFingerprint, protowire.BytesType)
	msg = protowire.AppendString(msg, b.fingerprint)
	return msg, nil
}

// Restore rebuilds a ledger from MarshalBinary output. Stored fingerprints
// are kept as they are, not recomputed, so Validate on the result reports
// any tampering with the snapshot. Only framing and wire errors fail here.
func Restore(data []byte) (*Ledger, error) {
	return RestoreWithConfig(data, DefaultConfig())
}

// RestoreWithConfig is Restore with an explicit clock for later appends.
func RestoreWithConfig(data []byte, cfg Config) (*Ledger, error) {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	l := &Ledger{
		byFingerprint: make(map[string]uint64),
		clock:         cfg.Clock,
	}

	for len(data) > 0 {
		if len(data) < frameHeaderSize {
			return nil, fmt.Errorf("%w: truncated frame header", ErrMalformedSnapshot)
		}
		size := binary.BigEndian.Uint32(data[:frameHeaderSize])
		data = data[frameHeaderSize:]
		if uint64(size) > uint64(len(data)) {
			return nil, fmt.Errorf("%w: frame of %d bytes exceeds remaining %d", ErrMalformedSnapshot, size, len(data))
		}
		b, err := decodeBlock(data[:size])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %v", ErrMalformedSnapshot, len(l.blocks), err)
		}
		data = data[size:]
		l.blocks = append(l.blocks, b)
		l.byFingerprint[b.fingerprint] = uint64(len(l.blocks) - 1)
	}

	if len(l.blocks) == 0 {
		return nil, fmt.Errorf("%w: no blocks", ErrMalformedSnapshot)
	}
	return l, nil
}

func decodeBlock(msg []byte) (Block, error) {
	var (
		b        Block
		kind     string
		payload  []byte
		seen     = make(map[protowire.Number]bool, 6)
		required = []protowire.Number{fieldIndex, fieldPrev, fieldCreatedAt, fieldKind, fieldPayload, fieldFingerprint}
	)

	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return Block{}, protowire.ParseError(n)
		}
		msg = msg[n:]

		switch {
		case num == fieldIndex && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(msg)
			if m < 0 {
				return Block{}, protowire.ParseError(m)
			}
			b.index, n = v, m
		case num == fieldCreatedAt && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(msg)
			if m < 0 {
				return Block{}, protowire.ParseError(m)
			}
			b.createdAt, n = protowire.DecodeZigZag(v), m
		case typ == protowire.BytesType && (num == fieldPrev || num == fieldKind || num == fieldPayload || num == fieldFingerprint):
			v, m := protowire.ConsumeBytes(msg)
			if m < 0 {
				return Block{}, protowire.ParseError(m)
			}
			switch num {
			case fieldPrev:
				b.prev = string(v)
			case fieldKind:
				kind = string(v)
			case fieldPayload:
				payload = append([]byte(nil), v...)
			case fieldFingerprint:
				b.fingerprint = string(v)
			}
			n = m
		default:
			m := protowire.ConsumeFieldValue(num, typ, msg)
			if m < 0 {
				return Block{}, protowire.ParseError(m)
			}
			msg = msg[m:]
			continue
		}
		seen[num] = true
		msg = msg[n:]
	}

	for _, num := range required {
		if !seen[num] {
			return Block{}, fmt.Errorf("missing field %d", num)
		}
	}
	b.payload = DecodePayload(kind, payload)
	return b, nil
}
