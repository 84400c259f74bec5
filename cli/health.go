package cli

import (
	"fmt"

	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the feedback service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			check := services.NewHealthService(a.client(nil), Version).CheckHealth(cmd.Context())

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				if err := writeJSON(out, check); err != nil {
					return err
				}
			case "text":
				api := check.Components["feedback_api"]
				fmt.Fprintf(out, "%s %s", check.Status, a.cfg.API.BaseURL)
				if api.Details != "" {
					fmt.Fprintf(out, " (%s)", api.Details)
				}
				fmt.Fprintln(out)
			default:
				return fmt.Errorf("unsupported output format %q (want text or json)", output)
			}

			if check.Status == types.HealthStatusDown {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}
