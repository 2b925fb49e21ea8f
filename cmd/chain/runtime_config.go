package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/pharma_chain/src/config"
)

type MenuAction string

const (
	ActionAdd      MenuAction = "add"
	ActionDisplay  MenuAction = "display"
	ActionValidate MenuAction = "validate"
	ActionExport   MenuAction = "export"
	ActionAudit    MenuAction = "audit"
)

// Shipment is one --ship ID=DRUG argument.
type Shipment struct {
	ID   string
	Drug string
}

type RuntimeConfig struct {
	Action         MenuAction
	ActionProvided bool
	Shipments      []Shipment
	AuditPath      string
	OutDir         string
	ConfigPath     string
	LogConfigPath  string
	Verbose        bool
	Seed           uint64
	SeedProvided   bool
	Incremental    bool
}

func defaultConfig() RuntimeConfig {
	return RuntimeConfig{
		Action:         ActionDisplay,
		ActionProvided: false,
	}
}

var defaultRuntimeConfig = defaultConfig()

const SHIP_FLAG = "--ship"
const CONFIG_FLAG = "--config"
const LOG_CONFIG_FLAG = "--log-config"
const OUT_FLAG = "--out"
const SEED_FLAG = "--seed"
const VERBOSE_FLAG = "--verbose"
const INCREMENTAL_FLAG = "--incremental"

// flagValue matches "--flag VALUE" and "--flag=VALUE" at args[*i].
func flagValue(args []string, i *int, flag string) (string, bool, error) {
	arg := args[*i]
	if arg == flag {
		if *i+1 >= len(args) {
			return "", true, fmt.Errorf("missing value after %q", flag)
		}
		*i++
		return strings.TrimSpace(args[*i]), true, nil
	}
	if after, ok := strings.CutPrefix(arg, flag+"="); ok {
		return strings.TrimSpace(after), true, nil
	}
	return "", false, nil
}

func parseShipment(raw string) (Shipment, error) {
	id, drug, ok := strings.Cut(raw, "=")
	id, drug = strings.TrimSpace(id), strings.TrimSpace(drug)
	if !ok || id == "" || drug == "" {
		return Shipment{}, fmt.Errorf("invalid %s value %q: want ID=DRUG", SHIP_FLAG, raw)
	}
	return Shipment{ID: id, Drug: drug}, nil
}

func parseCLI(args []string, cfg RuntimeConfig) (RuntimeConfig, error) {
	runtimeCfg := cfg
	actionProvided := false

	setAction := func(arg string, action MenuAction) error {
		if actionProvided {
			return fmt.Errorf("multiple actions provided: %q", arg)
		}
		runtimeCfg.Action = action
		runtimeCfg.ActionProvided = true
		actionProvided = true
		return nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == VERBOSE_FLAG {
			runtimeCfg.Verbose = true
			continue
		}

		if arg == INCREMENTAL_FLAG {
			runtimeCfg.Incremental = true
			continue
		}

		if v, ok, err := flagValue(args, &i, SHIP_FLAG); ok {
			if err != nil {
				return runtimeCfg, err
			}
			ship, err := parseShipment(v)
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.Shipments = append(runtimeCfg.Shipments, ship)
			continue
		}

		if v, ok, err := flagValue(args, &i, CONFIG_FLAG); ok {
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.ConfigPath = v
			continue
		}

		if v, ok, err := flagValue(args, &i, LOG_CONFIG_FLAG); ok {
			if err != nil {
				return runtimeCfg, err
			}
			runtimeCfg.LogConfigPath = v
			continue
		}

		if v, ok, err := flagValue(args, &i, OUT_FLAG); ok {
			if err != nil {
				return runtimeCfg, err
			}
			if v == "" {
				return runtimeCfg, fmt.Errorf("%s must not be empty", OUT_FLAG)
			}
			runtimeCfg.OutDir = v
			continue
		}

		if v, ok, err := flagValue(args, &i, SEED_FLAG); ok {
			if err != nil {
				return runtimeCfg, err
			}
			parsed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return runtimeCfg, fmt.Errorf("invalid %s value %q: %w", SEED_FLAG, v, err)
			}
			runtimeCfg.Seed = parsed
			runtimeCfg.SeedProvided = true
			continue
		}

		normalized := strings.ToLower(strings.TrimSpace(arg))
		switch normalized {
		case string(ActionDisplay), "show", "list":
			if err := setAction(arg, ActionDisplay); err != nil {
				return runtimeCfg, err
			}
		case string(ActionValidate), "verify":
			if err := setAction(arg, ActionValidate); err != nil {
				return runtimeCfg, err
			}
		case string(ActionExport):
			if err := setAction(arg, ActionExport); err != nil {
				return runtimeCfg, err
			}
		case string(ActionAudit):
			if err := setAction(arg, ActionAudit); err != nil {
				return runtimeCfg, err
			}
			if i+1 >= len(args) {
				return runtimeCfg, fmt.Errorf("missing snapshot path after %q", arg)
			}
			i++
			runtimeCfg.AuditPath = strings.TrimSpace(args[i])
		default:
			return runtimeCfg, fmt.Errorf("unsupported argument %q", arg)
		}
	}

	if runtimeCfg.Action == ActionAudit && len(runtimeCfg.Shipments) > 0 {
		return runtimeCfg, fmt.Errorf("%s cannot be combined with %q", SHIP_FLAG, ActionAudit)
	}
	if len(runtimeCfg.Shipments) > 0 && !runtimeCfg.ActionProvided {
		runtimeCfg.Action = ActionDisplay
		runtimeCfg.ActionProvided = true
	}

	return runtimeCfg, nil
}

// applyOverrides lays CLI flags over the file configuration.
func applyOverrides(fileCfg config.Config, cfg RuntimeConfig) config.Config {
	out := fileCfg
	if cfg.SeedProvided {
		out.Sensor.Seed = cfg.Seed
	}
	if cfg.Incremental {
		out.Validation.Incremental = true
	}
	if cfg.OutDir != "" {
		out.Export.Directory = cfg.OutDir
	}
	return out
}

func printUsage(cfg RuntimeConfig) {
	fmt.Printf("Usage: go run ./cmd/chain [display|validate|export|audit PATH] [%s ID=DRUG ...] [%s PATH] [%s PATH] [%s DIR] [%s N] [%s] [%s]\n",
		SHIP_FLAG,
		CONFIG_FLAG,
		LOG_CONFIG_FLAG,
		OUT_FLAG,
		SEED_FLAG,
		INCREMENTAL_FLAG,
		VERBOSE_FLAG,
	)
	fmt.Println("With no arguments on a terminal the interactive menu starts.")
	fmt.Printf("Shipments given with %q are appended before the action runs; the action defaults to %q.\n", SHIP_FLAG, cfg.Action)
	fmt.Printf("Configuration is read from %q or discovered as ./pharma_chain.toml, ./local/pharma_chain.toml.\n", CONFIG_FLAG)
	fmt.Printf("Sensor seed defaults to random; fix it with %q for reproducible readings.\n", SEED_FLAG)
	fmt.Printf("Validation re-checks the whole chain unless %q is set.\n", INCREMENTAL_FLAG)
	fmt.Println("Actions: display (print every block), validate (check every hash and link), export (write snapshot + TOML report), audit PATH (restore a snapshot and validate it).")
}
