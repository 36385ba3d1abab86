package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/JonMunkholm/prfbulk/internal/archive"
	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <bundle.zip>",
		Short: "List the files and manifest of a generated archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}
			entries, err := archive.ReadAll(data)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(w, "%-50s %8d bytes", e.Name, len(e.Content))
				if e.Name != core.ManifestName {
					rows, err := countRows(e.Content)
					if err != nil {
						return fmt.Errorf("read %s: %w", e.Name, err)
					}
					fmt.Fprintf(w, " %6d rows", rows)
				}
				fmt.Fprintln(w)
			}

			for _, e := range entries {
				if e.Name != core.ManifestName {
					continue
				}
				var m core.Manifest
				if err := json.Unmarshal(e.Content, &m); err != nil {
					return fmt.Errorf("decode manifest: %w", err)
				}
				fmt.Fprintf(w, "\njob %s, %s, sequence %s-%s\n", m.JobID, m.DateUTC, m.SequenceRangeStart, m.SequenceRangeEnd)
			}
			return nil
		},
	}
}

// countRows counts CSV records after the header. Quoted fields may hold
// line breaks, so lines are not records.
func countRows(content []byte) (int, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return 0, err
	}
	return max(len(records)-1, 0), nil
}
