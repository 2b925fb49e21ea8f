package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danmuck/pharma_chain/cmd/internal/logcfg"
	"github.com/danmuck/pharma_chain/src/chain"
	"github.com/danmuck/pharma_chain/src/config"
	"github.com/danmuck/pharma_chain/src/sensors"
	"github.com/danmuck/pharma_chain/src/supply"
	logs "github.com/danmuck/smplog"
)

// app is everything one run of the CLI owns. The ledger lives only as long
// as the process.
type app struct {
	cfg     RuntimeConfig
	appCfg  config.Config
	ledger  *chain.Ledger
	tracker *supply.Tracker
}

func main() {
	cfg, err := parseCLI(os.Args[1:], defaultRuntimeConfig)
	logs.Configure(logcfg.Load(cfg.LogConfigPath))
	if err != nil {
		fmt.Printf("Error: %v\n\n", err)
		printUsage(defaultRuntimeConfig)
		os.Exit(1)
	}

	if cfg.Action == ActionAudit {
		if _, err := executeAuditAction(cfg.AuditPath, cfg.Verbose); err != nil {
			if errors.Is(err, errChainCompromised) {
				os.Exit(2)
			}
			logs.Fatalf(err, "Audit failed")
		}
		return
	}

	a, err := newApp(cfg)
	if err != nil {
		logs.Fatalf(err, "Failed to initialize supply chain")
	}

	for _, s := range cfg.Shipments {
		if err := a.addShipment(s); err != nil {
			logs.Fatalf(err, "Failed to add shipment %s", s.ID)
		}
	}

	if !cfg.ActionProvided {
		if !isInteractiveReader(os.Stdin) {
			printUsage(cfg)
			return
		}
		if err := a.runInteractiveSession(os.Stdin); err != nil {
			logs.Fatalf(err, "Interactive session failed")
		}
		return
	}

	err = a.executeActionOnce(cfg.Action, nil)
	if errors.Is(err, errChainCompromised) {
		os.Exit(2)
	}
	if err != nil {
		logs.Fatalf(err, "Action %q failed", cfg.Action)
	}
}

func loadAppConfig(cfg RuntimeConfig) (config.Config, string, error) {
	if cfg.ConfigPath != "" {
		fileCfg, err := config.Load(cfg.ConfigPath)
		return fileCfg, cfg.ConfigPath, err
	}
	return config.Discover()
}

func newApp(cfg RuntimeConfig) (*app, error) {
	fileCfg, source, err := loadAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	appCfg := applyOverrides(fileCfg, cfg)
	if err := appCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source != "" {
		logs.Debugf("config loaded from %s", source)
	}

	sensor, err := sensors.NewRandom(sensors.Config{
		TempMinC:    appCfg.Sensor.TempMinC,
		TempMaxC:    appCfg.Sensor.TempMaxC,
		HumidityMin: appCfg.Sensor.HumidityMin,
		HumidityMax: appCfg.Sensor.HumidityMax,
		Seed:        appCfg.Sensor.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sensor: %w", err)
	}

	ledger := chain.New()
	return &app{
		cfg:     cfg,
		appCfg:  appCfg,
		ledger:  ledger,
		tracker: supply.NewTracker(ledger, sensor, supply.Config{Incremental: appCfg.Validation.Incremental}),
	}, nil
}

func (a *app) addShipment(s Shipment) error {
	b, err := a.tracker.AddShipment(s.ID, s.Drug)
	if err != nil {
		return err
	}
	logs.Printf("\nShipment %s added as block %d.\n", s.ID, b.Index())
	if a.cfg.Verbose {
		printBlock(b, true)
	}
	return nil
}

func (a *app) runInteractiveSession(input io.Reader) error {
	reader := getBufferedReader(input)
	logs.Titlef("Welcome to the Pharmaceutical Supply Chain Management System\n")

	for {
		action, err := promptAction(reader, a.ledger.Len())
		if errors.Is(err, errMenuExit) {
			logs.Println("\nExiting the system. Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		err = a.executeActionOnce(action, reader)
		switch {
		case errors.Is(err, errMenuBack):
			logs.Println("Action cancelled.")
		case errors.Is(err, errChainCompromised):
			// already reported
		case err != nil:
			logs.Printf("\nAction %q failed: %v\n", action, err)
		}
	}
}

func (a *app) executeActionOnce(action MenuAction, reader *bufio.Reader) error {
	switch action {
	case ActionAdd:
		if reader == nil {
			return fmt.Errorf("%q needs %s ID=DRUG outside the menu", ActionAdd, SHIP_FLAG)
		}
		s, err := promptShipment(reader)
		if err != nil {
			return err
		}
		if err := a.addShipment(s); err != nil {
			return err
		}
		logs.Println("\nShipment added successfully!")
		return nil
	case ActionDisplay:
		printChain(a.tracker.Blocks(), a.cfg.Verbose)
		return nil
	case ActionValidate:
		res := a.tracker.Validate()
		printValidation(res)
		if !res.Valid {
			return errChainCompromised
		}
		return nil
	case ActionExport:
		_, _, err := executeExportAction(a.tracker, a.appCfg.Export.Directory, time.Now())
		return err
	default:
		return fmt.Errorf("unsupported action: %s", action)
	}
}
