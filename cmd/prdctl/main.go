// Package main provides prdctl, a command line companion to the PRD server
// for inspecting the tag protocol and templates offline.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prdctl",
		Short: "Inspect PRD tag output, templates and prompts",
		Long: `prdctl works with the tag protocol used by the PRD builder.

It can:
- parse generated text into sections and a question
- assemble a sections JSON object into a document
- list templates and print the system prompt for one
- run a single generation against the configured generator`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		parseCmd(),
		assembleCmd(),
		templatesCmd(),
		promptCmd(),
		generateCmd(),
	)
	return cmd
}

// readInput reads the named file, or stdin when path is "" or "-"
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
