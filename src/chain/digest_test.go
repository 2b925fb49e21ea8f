package chain

import (
	"errors"
	"math"
	"testing"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty input",
			in:   "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "genesis canonical bytes",
			in:   "001700000000Genesis Block",
			want: "7dbc86aa2c49ead9f9089cc7a54efc9252fdf0469e9e6eb5faa3b70963fd5616",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Digest([]byte(tc.in))
			if got != tc.want {
				t.Fatalf("Digest(%q) = %s, want %s", tc.in, got, tc.want)
			}
			if len(got) != FingerprintSize {
				t.Fatalf("len(Digest) = %d, want %d", len(got), FingerprintSize)
			}
			if again := Digest([]byte(tc.in)); again != got {
				t.Fatalf("Digest is not deterministic: %s != %s", again, got)
			}
		})
	}
}

func TestCanonicalBytes(t *testing.T) {
	shipment := ShipmentPayload{
		ShipmentID: "S1",
		DrugName:   "InsulinX",
		Reading:    Reading{Temperature: 5, Humidity: 40},
	}
	tests := []struct {
		name      string
		index     uint64
		prev      string
		createdAt int64
		payload   Payload
		want      string
	}{
		{
			name:      "genesis",
			index:     0,
			prev:      GenesisPrevFingerprint,
			createdAt: 1700000000,
			payload:   GenesisPayload{},
			want:      "001700000000Genesis Block",
		},
		{
			name:      "shipment keeps key order and units",
			index:     1,
			prev:      "ab",
			createdAt: 42,
			payload:   shipment,
			want:      `1ab42{"Shipment ID":"S1","Drug Name":"InsulinX","IoT Data":{"Temperature":"5°C","Humidity":"40%"}}`,
		},
		{
			name:      "negative timestamp and fractional reading",
			index:     7,
			prev:      "",
			createdAt: -3,
			payload: ShipmentPayload{
				ShipmentID: "S<7>",
				DrugName:   "A&B",
				Reading:    Reading{Temperature: -2.5, Humidity: 33.25},
				RecordedAt: "Mon Jan  2 15:04:05 2006",
			},
			want: `7-3{"Shipment ID":"S<7>","Drug Name":"A&B","IoT Data":{"Temperature":"-2.5°C","Humidity":"33.25%"},"Timestamp":"Mon Jan  2 15:04:05 2006"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanonicalBytes(tc.index, tc.prev, tc.createdAt, tc.payload)
			if err != nil {
				t.Fatalf("CanonicalBytes() error = %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("CanonicalBytes() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCanonicalBytesSerializationError(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{name: "nil payload", payload: nil},
		{name: "NaN temperature", payload: ShipmentPayload{ShipmentID: "S1", DrugName: "X", Reading: Reading{Temperature: math.NaN()}}},
		{name: "infinite humidity", payload: ShipmentPayload{ShipmentID: "S1", DrugName: "X", Reading: Reading{Humidity: math.Inf(1)}}},
		{name: "invalid utf-8", payload: ShipmentPayload{ShipmentID: "S\xff", DrugName: "X"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CanonicalBytes(1, "0", 0, tc.payload)
			var serr *SerializationError
			if !errors.As(err, &serr) {
				t.Fatalf("CanonicalBytes() error = %v, want *SerializationError", err)
			}
		})
	}
}
