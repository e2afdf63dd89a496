package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"redspec/internal/service/generation"
	"redspec/internal/templates"
)

func templatesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "templates [id]",
		Short: "List templates, or show one template's section plan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := templates.NewRegistry()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				tmpl, err := registry.Get(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd, tmpl)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "KEY\tTITLE\tQUESTION\n")
				for _, s := range tmpl.Sections {
					fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Title, s.Question)
				}
				return w.Flush()
			}

			list := registry.List()
			if asJSON {
				return printJSON(cmd, list)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tNAME\tSECTIONS\tDESCRIPTION\n")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.ID, t.DisplayName, len(t.Sections), t.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func promptCmd() *cobra.Command {
	var templateID string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt sent with every exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tmpl *templates.Template
			if templateID != "" {
				registry, err := templates.NewRegistry()
				if err != nil {
					return err
				}
				if tmpl, err = registry.Get(templateID); err != nil {
					return err
				}
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), generation.BuildSystemPrompt(tmpl))
			return err
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", "standard", "Template id (empty for the base instruction only)")
	return cmd
}
