package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/optigate/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the host state",
	Long:  `Prints every experiment, activation and variation the host exposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		snap := s.client.Snapshot(cmd.Context())
		out := cmd.OutOrStdout()

		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}

		md := tui.SnapshotMarkdown(snap)
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			tui.PrintBanner(out)
			rendered, err := tui.NewRenderer()(md)
			if err == nil {
				md = rendered
			}
		}
		_, err = fmt.Fprint(out, md)
		return err
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print the state as JSON")
}
