package main

import (
	"iter"
	"time"

	"github.com/danmuck/pharma_chain/src/chain"
	logs "github.com/danmuck/smplog"
)

func shortFingerprint(fp string) string {
	if len(fp) > 16 {
		return fp[:16] + "..."
	}
	return fp
}

func printBlock(b chain.Block, verbose bool) {
	hash, prev := shortFingerprint(b.Fingerprint()), shortFingerprint(b.PrevFingerprint())
	if verbose {
		hash, prev = b.Fingerprint(), b.PrevFingerprint()
	}

	logs.MenuItem(int(b.Index()), "Block [Hash: "+hash+"]", false)
	logs.Printf("\n")
	logs.Dataf("      Previous Hash: %s\n", prev)
	switch p := b.Payload().(type) {
	case chain.ShipmentPayload:
		temp, _ := p.Reading.TemperatureText()
		hum, _ := p.Reading.HumidityText()
		logs.Dataf("      Shipment ID: %s  Drug Name: %s\n", p.ShipmentID, p.DrugName)
		logs.Dataf("      IoT Data: Temperature %s  Humidity %s\n", temp, hum)
		if p.RecordedAt != "" {
			logs.Dataf("      Recorded: %s\n", p.RecordedAt)
		}
	default:
		logs.Dataf("      Data: %v\n", p)
	}
	logs.Dataf("      Timestamp: %s\n", b.Time().Format(time.ANSIC))
}

func printChain(blocks iter.Seq[chain.Block], verbose bool) {
	logs.Titlef("\n--- Pharmaceutical Supply Chain ---\n\n")
	for b := range blocks {
		printBlock(b, verbose)
		logs.Printf("\n")
	}
}

func printValidation(res chain.ValidationResult) {
	logs.Printf("\n")
	if res.Valid {
		logs.StatusInfo("Supply Chain Integrity: Valid")
		logs.Printf("\n")
		logs.Field("Blocks checked", res.Checked)
		logs.Printf("\n")
		return
	}
	logs.StatusWarn("Supply Chain Integrity: Compromised")
	logs.Printf("\n")
	logs.Field("First broken block", res.FirstBroken)
	logs.Printf("\n")
	if res.Violation != nil {
		logs.Field("Violation", string(res.Violation.Kind))
		logs.Printf("\n")
		logs.DataKV("detail", res.Violation.Error())
		logs.Printf("\n")
	}
}
