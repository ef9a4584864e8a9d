package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/optigate"
	"github.com/aretw0/optigate/pkg/domain"
	"github.com/aretw0/optigate/pkg/ports"
	"github.com/spf13/cobra"
)

var activateCmd = &cobra.Command{
	Use:   "activate <experiment name>",
	Short: "Activate an experiment by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		active := s.client.Activate(cmd.Context(), args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "active: %t\n", active)
		if ids := s.client.Variant(cmd.Context(), args[0]); len(ids) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "variation ids: %s\n", strings.Join(ids, ", "))
		}
		return printQueue(cmd, s.host)
	},
}

var trackCmd = &cobra.Command{
	Use:   "track <event>",
	Short: "Track a custom event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		var opts []optigate.TrackOption
		if cmd.Flags().Changed("revenue") {
			revenue, _ := cmd.Flags().GetInt64("revenue")
			opts = append(opts, optigate.WithRevenue(revenue))
		}
		s.client.Track(cmd.Context(), args[0], opts...)
		return printQueue(cmd, s.host)
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <json object>...",
	Short: "Attach custom tags to the session",
	Long:  `Each argument is a JSON object; objects are merged left to right into a single customTag command.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags := make([]any, 0, len(args))
		for _, arg := range args {
			var v any
			if err := json.Unmarshal([]byte(arg), &v); err != nil {
				return fmt.Errorf("invalid tag %q: %w", arg, err)
			}
			tags = append(tags, v)
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.client.Tag(cmd.Context(), tags...); err != nil {
			return err
		}
		return printQueue(cmd, s.host)
	},
}

// printQueue shows the commands waiting in an in-memory host. Shared hosts
// keep their queue for the real consumer.
func printQueue(cmd *cobra.Command, host ports.Host) error {
	lister, ok := host.(interface{ Commands() []domain.Command })
	if !ok {
		return nil
	}
	for _, c := range lister.Commands() {
		data, err := json.Marshal(c.Tuple())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "queued: %s\n", data)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(activateCmd, trackCmd, tagCmd)
	trackCmd.Flags().Int64("revenue", 0, "Revenue attached to the event, in cents")
}
