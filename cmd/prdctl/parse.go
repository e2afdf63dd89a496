package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redspec/internal/domain/models/prd"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/protocol"
)

func parseCmd() *cobra.Command {
	heuristics := protocol.DefaultHeuristics

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse tagged text into sections and a question (stdin by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			result := heuristics.Parse(string(text))
			return printJSON(cmd, prdSvc.NewParsePreview(string(text), result))
		},
	}

	cmd.Flags().IntVar(&heuristics.MaxOptionLineLength, "max-option-length", heuristics.MaxOptionLineLength,
		"Lines longer than this are prose when no OPTIONS block is present")
	cmd.Flags().StringVar(&heuristics.ProseMarker, "prose-marker", heuristics.ProseMarker,
		"Lines containing this marker are prose when no OPTIONS block is present")
	return cmd
}

func assembleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assemble [file]",
		Short: "Assemble a JSON object of sections into a document (stdin by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			sections, err := prd.DecodeSections(raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), protocol.Assemble(sections))
			return err
		},
	}
}
