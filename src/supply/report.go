package supply

import (
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/pharma_chain/src/chain"
)

// Report is the TOML audit record of a chain: the validation outcome
// followed by one [[block]] table per block.
type Report struct {
	GeneratedAt string        `toml:"generated_at"`
	Length      int           `toml:"length"`
	Valid       bool          `toml:"valid"`
	FirstBroken int           `toml:"first_broken"`
	Violation   string        `toml:"violation,omitempty"`
	Blocks      []ReportBlock `toml:"block"`
}

type ReportBlock struct {
	Index           int64  `toml:"index"`
	Fingerprint     string `toml:"fingerprint"`
	PrevFingerprint string `toml:"prev_fingerprint"`
	CreatedAt       string `toml:"created_at"`
	Kind            string `toml:"kind"`
	ShipmentID      string `toml:"shipment_id,omitempty"`
	DrugName        string `toml:"drug_name,omitempty"`
	Temperature     string `toml:"temperature,omitempty"`
	Humidity        string `toml:"humidity,omitempty"`
	Data            string `toml:"data,omitempty"`
}

// BuildReport describes blocks together with the result of validating them.
func BuildReport(blocks iter.Seq[chain.Block], res chain.ValidationResult, now time.Time) Report {
	r := Report{
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Valid:       res.Valid,
		FirstBroken: res.FirstBroken,
	}
	if res.Violation != nil {
		r.Violation = res.Violation.Error()
	}

	for b := range blocks {
		rb := ReportBlock{
			Index:           int64(b.Index()),
			Fingerprint:     b.Fingerprint(),
			PrevFingerprint: b.PrevFingerprint(),
			CreatedAt:       b.Time().UTC().Format(time.RFC3339),
			Kind:            b.Payload().Kind(),
		}
		switch p := b.Payload().(type) {
		case chain.ShipmentPayload:
			rb.ShipmentID = p.ShipmentID
			rb.DrugName = p.DrugName
			rb.Temperature, _ = p.Reading.TemperatureText()
			rb.Humidity, _ = p.Reading.HumidityText()
		default:
			rb.Data = fmt.Sprint(p)
		}
		r.Blocks = append(r.Blocks, rb)
	}
	r.Length = len(r.Blocks)
	return r
}

// WriteReport validates the chain and writes the audit report to w.
func (t *Tracker) WriteReport(w io.Writer) (chain.ValidationResult, error) {
	res := t.Validate()
	report := BuildReport(t.chain.All(), res, t.cfg.Clock())

	encoder := toml.NewEncoder(w)
	encoder.Indent = "    "
	if err := encoder.Encode(report); err != nil {
		return res, fmt.Errorf("failed to encode report: %w", err)
	}
	return res, nil
}
