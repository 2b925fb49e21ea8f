package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/danmuck/pharma_chain/src/chain"
	"github.com/danmuck/pharma_chain/src/sensors"
	"github.com/danmuck/pharma_chain/src/supply"
	logs "github.com/danmuck/smplog"
)

var errChainCompromised = errors.New("chain integrity compromised")

func createDirPath(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// executeExportAction writes chain-<unix>.bin (snapshot) and
// chain-<unix>.toml (audit report) into dir.
func executeExportAction(tracker *supply.Tracker, dir string, now time.Time) (string, string, error) {
	if err := createDirPath(dir); err != nil {
		return "", "", err
	}
	stem := fmt.Sprintf("chain-%d", now.Unix())
	snapshotPath := filepath.Join(dir, stem+".bin")
	reportPath := filepath.Join(dir, stem+".toml")

	snap, err := os.Create(snapshotPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer snap.Close()
	if err := tracker.ExportSnapshot(snap); err != nil {
		return "", "", err
	}

	report, err := os.Create(reportPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer report.Close()
	res, err := tracker.WriteReport(report)
	if err != nil {
		return "", "", err
	}
	if !res.Valid {
		logs.Warnf("exported chain is compromised at block %d", res.FirstBroken)
	}

	logs.Printf("Snapshot written to %s\n", snapshotPath)
	logs.Printf("Report written to %s\n", reportPath)
	return snapshotPath, reportPath, nil
}

// executeAuditAction restores a snapshot into a separate ledger, prints it
// and validates it. A compromised chain returns errChainCompromised.
func executeAuditAction(path string, verbose bool) (chain.ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chain.ValidationResult{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	restored, err := chain.Restore(data)
	if err != nil {
		return chain.ValidationResult{}, fmt.Errorf("failed to restore %s: %w", path, err)
	}

	auditor := supply.NewTracker(restored, sensors.Fixed{}, supply.Config{})
	printChain(auditor.Blocks(), verbose)
	res := auditor.Validate()
	printValidation(res)
	if !res.Valid {
		return res, fmt.Errorf("%s: %w", path, errChainCompromised)
	}
	return res, nil
}
