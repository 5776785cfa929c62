// Package main provides atelierctl, an operator tool that inspects saved
// outfit sessions in the configured store and tries product page imports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/raushankrgupta/fitly-atelier/config"
	"github.com/raushankrgupta/fitly-atelier/store"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"github.com/spf13/cobra"
)

var (
	driverFlag string
	outputFlag string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "atelierctl",
		Short:         "Inspect saved try-on sessions and product imports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadConfig()
			mode := "production"
			if verbose {
				mode = "development"
			}
			return utils.InitLogger(mode)
		},
	}

	root.PersistentFlags().StringVar(&driverFlag, "driver", "", "Store driver (mongo, redis, memory); defaults to STORE_DRIVER")
	root.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "Output format: table or json")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	root.AddCommand(newSessionsCmd())
	root.AddCommand(newImportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openBackend opens the store named by --driver or the configuration
func openBackend(ctx context.Context) (*store.Backend, error) {
	driver := driverFlag
	if driver == "" {
		driver = config.StoreDriver
	}
	return store.Open(ctx, driver)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
