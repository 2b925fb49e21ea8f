package chain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	KindGenesis  = "genesis"
	KindShipment = "shipment"

	// GenesisData is the literal payload of block 0.
	GenesisData = "Genesis Block"

	temperatureUnit = "°C"
	humidityUnit    = "%"
)

// Payload is the record carried by a block. Implementations must be
// immutable values and must render the same bytes every time.
type Payload interface {
	Kind() string
	CanonicalBytes() ([]byte, error)
}

// GenesisPayload marks block 0.
type GenesisPayload struct{}

func (GenesisPayload) Kind() string { return KindGenesis }

func (GenesisPayload) CanonicalBytes() ([]byte, error) {
	return []byte(GenesisData), nil
}

func (GenesisPayload) String() string { return GenesisData }

// Reading is one environmental sample taken while a shipment is recorded.
type Reading struct {
	Temperature float64 // degrees Celsius
	Humidity    float64 // relative humidity, percent
}

// TemperatureText renders the temperature as it is hashed, e.g. "5°C".
func (r Reading) TemperatureText() (string, error) {
	return renderMeasure(r.Temperature, temperatureUnit)
}

// HumidityText renders the humidity as it is hashed, e.g. "40%".
func (r Reading) HumidityText() (string, error) {
	return renderMeasure(r.Humidity, humidityUnit)
}

func renderMeasure(v float64, unit string) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("non-finite measurement %v%s", v, unit)
	}
	return decimal.NewFromFloat(v).String() + unit, nil
}

func parseMeasure(s, unit string) (float64, error) {
	raw, ok := strings.CutSuffix(s, unit)
	if !ok {
		return 0, fmt.Errorf("measurement %q missing unit %q", s, unit)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("measurement %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

// ShipmentPayload records one drug shipment event.
type ShipmentPayload struct {
	ShipmentID string
	DrugName   string
	Reading    Reading
	RecordedAt string // display timestamp captured by the recorder, may be empty
}

type iotWire struct {
	Temperature string `json:"Temperature"`
	Humidity    string `json:"Humidity"`
}

// shipmentWire fixes the key order of the canonical form.
type shipmentWire struct {
	ShipmentID string  `json:"Shipment ID"`
	DrugName   string  `json:"Drug Name"`
	IoT        iotWire `json:"IoT Data"`
	Timestamp  string  `json:"Timestamp,omitempty"`
}

func (ShipmentPayload) Kind() string { return KindShipment }

// CanonicalBytes renders compact JSON with a fixed key order and no HTML
// escaping.
func (s ShipmentPayload) CanonicalBytes() ([]byte, error) {
	for _, field := range []string{s.ShipmentID, s.DrugName, s.RecordedAt} {
		if !utf8.ValidString(field) {
			return nil, errors.New("field is not valid UTF-8")
		}
	}
	temp, err := s.Reading.TemperatureText()
	if err != nil {
		return nil, err
	}
	hum, err := s.Reading.HumidityText()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err = enc.Encode(shipmentWire{
		ShipmentID: s.ShipmentID,
		DrugName:   s.DrugName,
		IoT:        iotWire{Temperature: temp, Humidity: hum},
		Timestamp:  s.RecordedAt,
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

func (s ShipmentPayload) String() string {
	temp, _ := s.Reading.TemperatureText()
	hum, _ := s.Reading.HumidityText()
	return fmt.Sprintf("Shipment ID: %s, Drug Name: %s, Temperature: %s, Humidity: %s", s.ShipmentID, s.DrugName, temp, hum)
}

// RawPayload holds canonical bytes that could not be decoded into a known
// payload type. It hashes exactly the bytes it was given.
type RawPayload struct {
	kind string
	data string
}

func (r RawPayload) Kind() string { return r.kind }

func (r RawPayload) CanonicalBytes() ([]byte, error) {
	return []byte(r.data), nil
}

func (r RawPayload) String() string { return r.data }

func decodeShipment(data []byte) (Payload, error) {
	var w shipmentWire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, err
	}
	temp, err := parseMeasure(w.IoT.Temperature, temperatureUnit)
	if err != nil {
		return nil, err
	}
	hum, err := parseMeasure(w.IoT.Humidity, humidityUnit)
	if err != nil {
		return nil, err
	}
	return ShipmentPayload{
		ShipmentID: w.ShipmentID,
		DrugName:   w.DrugName,
		Reading:    Reading{Temperature: temp, Humidity: hum},
		RecordedAt: w.Timestamp,
	}, nil
}

func decodeGenesis(data []byte) (Payload, error) {
	if string(data) != GenesisData {
		return nil, fmt.Errorf("unexpected genesis data %q", data)
	}
	return GenesisPayload{}, nil
}

var payloadDecoders = map[string]func([]byte) (Payload, error){
	KindGenesis:  decodeGenesis,
	KindShipment: decodeShipment,
}

// DecodePayload rebuilds a payload from its kind and canonical bytes. When
// the bytes do not decode, or do not re-encode to the same bytes, the result
// is a RawPayload so the stored bytes are what gets hashed.
func DecodePayload(kind string, data []byte) Payload {
	if decode, ok := payloadDecoders[kind]; ok {
		if p, err := decode(data); err == nil {
			if again, err := p.CanonicalBytes(); err == nil && bytes.Equal(again, data) {
				return p
			}
		}
	}
	return RawPayload{kind: kind, data: string(data)}
}
