package supply

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/danmuck/pharma_chain/src/api"
	"github.com/danmuck/pharma_chain/src/chain"
	"github.com/danmuck/pharma_chain/src/sensors"
	logs "github.com/danmuck/smplog"
)

var ErrInvalidShipment = errors.New("supply: invalid shipment")

// Config controls a Tracker.
type Config struct {
	Incremental bool             // validate only blocks added since the last valid result
	Clock       func() time.Time // stamps RecordedAt; defaults to time.Now
}

// Tracker records drug shipments on a ledger it is handed, attaching a
// sensor reading to each one.
type Tracker struct {
	chain  api.Blockchain
	sensor sensors.Source
	cfg    Config

	mu         sync.Mutex
	checkpoint chain.Checkpoint
}

func NewTracker(bc api.Blockchain, src sensors.Source, cfg Config) *Tracker {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Tracker{
		chain:  bc,
		sensor: src,
		cfg:    cfg,
	}
}

// AddShipment reads the sensor and appends a shipment block.
func (t *Tracker) AddShipment(shipmentID, drugName string) (chain.Block, error) {
	shipmentID = strings.TrimSpace(shipmentID)
	drugName = strings.TrimSpace(drugName)
	if shipmentID == "" {
		return chain.Block{}, fmt.Errorf("%w: shipment id is empty", ErrInvalidShipment)
	}
	if drugName == "" {
		return chain.Block{}, fmt.Errorf("%w: drug name is empty", ErrInvalidShipment)
	}

	reading, err := t.sensor.Read()
	if err != nil {
		return chain.Block{}, fmt.Errorf("read sensor for %s: %w", shipmentID, err)
	}

	b, err := t.chain.Append(chain.ShipmentPayload{
		ShipmentID: shipmentID,
		DrugName:   drugName,
		Reading:    reading,
		RecordedAt: t.cfg.Clock().Format(time.ANSIC),
	})
	if err != nil {
		return chain.Block{}, fmt.Errorf("append shipment %s: %w", shipmentID, err)
	}
	logs.Debugf("shipment %s appended as block %d (%s)", shipmentID, b.Index(), b.Fingerprint())
	return b, nil
}

// Validate checks the chain. With Incremental set, blocks already covered by
// the last valid result are trusted and only the new suffix is checked.
func (t *Tracker) Validate() chain.ValidationResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res chain.ValidationResult
	if t.cfg.Incremental && !t.checkpoint.IsZero() {
		res = t.chain.ValidateFrom(t.checkpoint)
	} else {
		res = t.chain.Validate()
	}

	if res.Valid {
		t.checkpoint = res.Checkpoint
		return res
	}
	t.checkpoint = chain.Checkpoint{}
	logs.Warnf("integrity violation at block %d: %v", res.FirstBroken, res.Violation)
	return res
}

// Blocks walks the recorded chain from genesis.
func (t *Tracker) Blocks() iter.Seq[chain.Block] {
	return t.chain.All()
}

// Len returns the chain length, genesis included.
func (t *Tracker) Len() int {
	return t.chain.Len()
}

// ExportSnapshot writes the chain's binary snapshot to w.
func (t *Tracker) ExportSnapshot(w io.Writer) error {
	data, err := t.chain.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
