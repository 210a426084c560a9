package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cloudx-io/openescrow/validation"
)

func main() {
	var (
		stateFile    = flag.String("state", "", "Path to an escrowd state file")
		outputFormat = flag.String("format", "text", "Output format: text or json")
		help         = flag.Bool("help", false, "Show usage information")
	)

	flag.Parse()

	if *help {
		showUsage()
		os.Exit(0)
	}

	if *stateFile == "" {
		showUsage()
		fmt.Fprintf(os.Stderr, "\nError: --state is required\n")
		os.Exit(1)
	}

	data, err := os.ReadFile(*stateFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading state file: %v\n", err)
		os.Exit(2)
	}

	result, err := validation.ValidateStateBytes(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
		os.Exit(2)
	}

	if *outputFormat == "json" {
		outputJSON(result)
	} else {
		outputText(result)
	}

	if !result.IsValid() {
		os.Exit(1)
	}
	os.Exit(0)
}

func showUsage() {
	fmt.Println("Escrow State Validator")
	fmt.Println()
	fmt.Println("Checks a persisted escrowd state file for inconsistent auctions.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  state-validator --state <file> [options]")
	fmt.Println()
	fmt.Println("Required Flags:")
	fmt.Println("  --state <file>                    State file written by escrowd (ESCROW_STATE_FILE)")
	fmt.Println()
	fmt.Println("Optional Flags:")
	fmt.Println("  --format <text|json>              Output format (default: text)")
	fmt.Println("  --help                            Show this help message")
	fmt.Println()
	fmt.Println("Exit Codes:")
	fmt.Println("  0 - Validation passed")
	fmt.Println("  1 - Validation failed")
	fmt.Println("  2 - Invalid input or runtime error")
}

func outputText(result *validation.StateValidationResult) {
	fmt.Println("Escrow State Validator")
	fmt.Println("======================")
	fmt.Println()

	fmt.Println("Summary:")
	fmt.Printf("  Recipient Valid:   %v\n", result.RecipientValid)
	fmt.Printf("  Auctions Valid:    %v\n", result.AuctionsValid)
	if len(result.InvalidAuctions) > 0 {
		fmt.Printf("  Invalid Auctions:  %v\n", result.InvalidAuctions)
	}

	fmt.Println()
	fmt.Println("Details:")
	for _, detail := range result.ValidationDetails {
		fmt.Printf("  - %s\n", detail)
	}

	fmt.Println()
	fmt.Println("======================")
	if result.IsValid() {
		fmt.Println("VALIDATION: ✓ PASSED")
	} else {
		fmt.Println("VALIDATION: ✗ FAILED")
	}
}

func outputJSON(result *validation.StateValidationResult) {
	output := map[string]any{
		"valid":            result.IsValid(),
		"recipient_valid":  result.RecipientValid,
		"auctions_valid":   result.AuctionsValid,
		"invalid_auctions": result.InvalidAuctions,
		"details":          result.ValidationDetails,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(string(data))
}
