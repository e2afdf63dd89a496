package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"redspec/internal/config"
	prdSvc "redspec/internal/domain/services/prd"
	"redspec/internal/protocol"
	"redspec/internal/service/generation"
	"redspec/internal/templates"
)

func generateCmd() *cobra.Command {
	var (
		templateID string
		generator  string
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "generate <message>",
		Short: "Send one message to the configured generator and parse the reply",
		Long: `Runs a single exchange with an empty history. The generator and its
credentials come from the same environment variables as the server
(GENERATOR, GENERATOR_MODEL, ANTHROPIC_API_KEY, ...).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if generator != "" {
				cfg.Generator = generator
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			registry, err := templates.NewRegistry()
			if err != nil {
				return err
			}
			tmpl, err := registry.Get(templateID)
			if err != nil {
				return err
			}

			gen, err := generation.NewGenerator(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			message := strings.Join(args, " ")
			resp, err := gen.Generate(cmd.Context(), &generation.Request{
				SystemPrompt: generation.BuildSystemPrompt(tmpl),
				Transcript:   "USER: " + message,
				Template:     tmpl,
			})
			if err != nil {
				return err
			}

			if raw {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
				return err
			}
			return printJSON(cmd, prdSvc.NewParsePreview(resp.Text, protocol.Parse(resp.Text)))
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", "standard", "Template id")
	cmd.Flags().StringVarP(&generator, "generator", "g", "", "Override GENERATOR (lorem, anthropic, openai, gemini, command)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the raw reply instead of the parsed preview")
	return cmd
}
