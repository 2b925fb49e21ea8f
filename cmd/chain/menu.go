package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	logs "github.com/danmuck/smplog"
)

var errMenuBack = errors.New("menu back")
var errMenuExit = errors.New("menu exit")

func isInteractiveInput(r *os.File) bool {
	info, err := r.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func isInteractiveReader(input io.Reader) bool {
	file, ok := input.(*os.File)
	if !ok {
		// Non-file readers (e.g. buffered wrappers) are treated as interactive.
		return true
	}
	return isInteractiveInput(file)
}

func getBufferedReader(input io.Reader) *bufio.Reader {
	if reader, ok := input.(*bufio.Reader); ok {
		return reader
	}
	return bufio.NewReader(input)
}

func printMenu(chainLen int) {
	logs.Printf("\n")
	logs.Titlef("--[ pharma_chain | %d block(s) ]--\n\n", chainLen)
	logs.Menuf("  1. add 		(record a new drug shipment)\n")
	logs.Menuf("  2. display 	(print the supply chain)\n")
	logs.Menuf("  3. validate 	(check every hash and link)\n")
	logs.Menuf("  4. exit\n")
	logs.Printf("\n")
	logs.Menuf("  5. export 	(write snapshot + TOML report)\n")
	logs.Printf("\n")
	logs.DividerRune(0, '=')
}

func printMenuHints() {
	logs.Divider(0)
	logs.Printf("\n")
	logs.KeyHint("1, a", "add — record a new drug shipment")
	logs.Printf("\n")
	logs.KeyHint("2, d", "display — print the supply chain")
	logs.Printf("\n")
	logs.KeyHint("3, v", "validate — check every hash and link")
	logs.Printf("\n")
	logs.KeyHint("5, x", "export — write snapshot + TOML report")
	logs.Printf("\n")
	logs.KeyHint("4, e, q", "exit — quit")
	logs.Printf("\n")
}

// parseMenuChoice maps a menu line to an action. The numbering keeps exit
// at 4 as the menu always has.
func parseMenuChoice(line string) (MenuAction, error) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "1", "a", string(ActionAdd):
		return ActionAdd, nil
	case "2", "d", string(ActionDisplay):
		return ActionDisplay, nil
	case "3", "v", string(ActionValidate):
		return ActionValidate, nil
	case "5", "x", string(ActionExport):
		return ActionExport, nil
	case "4", "e", "q", "exit", "quit":
		return "", errMenuExit
	default:
		return "", fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
	}
}

func promptAction(reader *bufio.Reader, chainLen int) (MenuAction, error) {
	for {
		printMenu(chainLen)
		logs.Promptf("\nEnter your choice (1-5): ")

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return "", errMenuExit
			}
			return "", fmt.Errorf("failed to read action: %w", err)
		}

		action, err := parseMenuChoice(line)
		if errors.Is(err, errMenuExit) {
			return "", err
		}
		if err != nil {
			logs.Printf("\n%v. Please select a valid option.\n\n", err)
			printMenuHints()
			continue
		}
		return action, nil
	}
}

// promptLine reads one non-empty line. "e" on its own backs out.
func promptLine(reader *bufio.Reader, label string) (string, error) {
	for {
		logs.Prompt(label)
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				return "", errMenuBack
			}
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		value := strings.TrimSpace(line)
		if strings.EqualFold(value, "e") {
			return "", errMenuBack
		}
		if value == "" {
			logs.Println("Value cannot be empty.")
			continue
		}
		return value, nil
	}
}

func promptShipment(reader *bufio.Reader) (Shipment, error) {
	id, err := promptLine(reader, "Enter Shipment ID: ")
	if err != nil {
		return Shipment{}, err
	}
	drug, err := promptLine(reader, "Enter Drug Name: ")
	if err != nil {
		return Shipment{}, err
	}
	return Shipment{ID: id, Drug: drug}, nil
}
