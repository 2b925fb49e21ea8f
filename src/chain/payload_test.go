package chain

import (
	"testing"
)

func TestReadingText(t *testing.T) {
	tests := []struct {
		name     string
		reading  Reading
		wantTemp string
		wantHum  string
	}{
		{name: "integers", reading: Reading{Temperature: 5, Humidity: 40}, wantTemp: "5°C", wantHum: "40%"},
		{name: "fractions", reading: Reading{Temperature: 2.1, Humidity: 49.99}, wantTemp: "2.1°C", wantHum: "49.99%"},
		{name: "below zero", reading: Reading{Temperature: -18, Humidity: 0}, wantTemp: "-18°C", wantHum: "0%"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			temp, err := tc.reading.TemperatureText()
			if err != nil {
				t.Fatalf("TemperatureText() error = %v", err)
			}
			hum, err := tc.reading.HumidityText()
			if err != nil {
				t.Fatalf("HumidityText() error = %v", err)
			}
			if temp != tc.wantTemp || hum != tc.wantHum {
				t.Fatalf("got (%s, %s), want (%s, %s)", temp, hum, tc.wantTemp, tc.wantHum)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	ship := ShipmentPayload{
		ShipmentID: "S1",
		DrugName:   "InsulinX",
		Reading:    Reading{Temperature: 3.5, Humidity: 44},
		RecordedAt: "Tue Nov 14 22:13:20 2023",
	}
	shipBytes, err := ship.CanonicalBytes()
	if err != nil {
		t.Fatalf("CanonicalBytes() error = %v", err)
	}

	tests := []struct {
		name    string
		kind    string
		data    string
		want    Payload
		wantRaw bool
	}{
		{name: "genesis", kind: KindGenesis, data: GenesisData, want: GenesisPayload{}},
		{name: "shipment", kind: KindShipment, data: string(shipBytes), want: ship},
		{name: "altered genesis", kind: KindGenesis, data: "Genesis Block!", wantRaw: true},
		{name: "unknown kind", kind: "recall", data: "R1", wantRaw: true},
		{name: "unknown json field", kind: KindShipment, data: `{"Shipment ID":"S1","Drug Name":"X","IoT Data":{"Temperature":"5°C","Humidity":"40%"},"Lot":"7"}`, wantRaw: true},
		{name: "non canonical spacing", kind: KindShipment, data: `{"Shipment ID": "S1","Drug Name":"X","IoT Data":{"Temperature":"5°C","Humidity":"40%"}}`, wantRaw: true},
		{name: "non canonical number", kind: KindShipment, data: `{"Shipment ID":"S1","Drug Name":"X","IoT Data":{"Temperature":"5.0°C","Humidity":"40%"}}`, wantRaw: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodePayload(tc.kind, []byte(tc.data))
			if got.Kind() != tc.kind {
				t.Fatalf("Kind() = %q, want %q", got.Kind(), tc.kind)
			}
			out, err := got.CanonicalBytes()
			if err != nil {
				t.Fatalf("CanonicalBytes() error = %v", err)
			}
			if string(out) != tc.data {
				t.Fatalf("CanonicalBytes() = %s, want %s", out, tc.data)
			}
			_, isRaw := got.(RawPayload)
			if isRaw != tc.wantRaw {
				t.Fatalf("DecodePayload() returned %T, wantRaw %v", got, tc.wantRaw)
			}
			if !tc.wantRaw && got != tc.want {
				t.Fatalf("DecodePayload() = %#v, want %#v", got, tc.want)
			}
		})
	}
}
