// Package main generates CLI reference documentation for the vdc client and
// the vehicle-deal-checker server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	server "github.com/donaldgifford/vehicle-deal-checker/cmd/vehicle-deal-checker/cmd"
	"github.com/donaldgifford/vehicle-deal-checker/cmd/vdc/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	flag.Parse()

	trees := []struct {
		dir  string
		root *cobra.Command
	}{
		{dir: "vdc", root: cmd.Root()},
		{dir: "vehicle-deal-checker", root: server.Root()},
	}

	for _, tr := range trees {
		dir := filepath.Join(*output, tr.dir)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatalf("creating output directory: %v", err)
		}

		tr.root.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(tr.root, dir); err != nil {
			log.Fatalf("generating %s docs: %v", tr.dir, err)
		}
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}
