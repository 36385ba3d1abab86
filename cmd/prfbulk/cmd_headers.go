package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/JonMunkholm/prfbulk/internal/core/tables"
	"github.com/spf13/cobra"
)

func newHeadersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "headers",
		Short: "List the required input columns and the output layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Required input columns (any order):")
			for _, h := range tables.RequiredHeaders {
				fmt.Fprintf(w, "  %s\n", h)
			}
			fmt.Fprintf(w, "\nNew member files:      %s\n", strings.Join(tables.NewMemberColumns, ", "))
			fmt.Fprintf(w, "Existing member files: %s\n", strings.Join(tables.ExistingMemberColumns, ", "))
			fmt.Fprintf(w, "\nAt most %d rows per file, %d data rows per input.\n", core.ChunkSize, core.MaxRows)
			return nil
		},
	}
}

func newTemplateCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a header-only input template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" || out == "-" {
				_, err := cmd.OutOrStdout().Write(core.RenderTemplate())
				return err
			}
			if err := os.WriteFile(out, core.RenderTemplate(), 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output path, - for stdout")
	return cmd
}
