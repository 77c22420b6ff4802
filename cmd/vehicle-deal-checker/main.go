// Package main is the entry point for the vehicle-deal-checker server.
package main

import (
	"os"

	"github.com/donaldgifford/vehicle-deal-checker/cmd/vehicle-deal-checker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
