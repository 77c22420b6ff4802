// Package main is the entry point for the vdc CLI client.
package main

import (
	"github.com/donaldgifford/vehicle-deal-checker/cmd/vdc/cmd"
)

func main() {
	cmd.Execute()
}
