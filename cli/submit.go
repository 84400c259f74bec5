package cli

import (
	"fmt"
	"time"

	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/spf13/cobra"
)

func newSubmitCmd(a *app) *cobra.Command {
	var req types.FeedbackRequest

	cmd := &cobra.Command{
		Use:     "submit",
		Short:   "Submit a feedback entry",
		Example: `  feedback submit --name "John Doe" --email john@example.com --message "Great app!"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services.NewSubmissionService(a.client(nil),
				services.WithSuccessDuration(time.Duration(a.cfg.UI.ToastSeconds)*time.Second),
			)

			res, err := svc.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			switch res.Outcome {
			case services.OutcomeInvalid:
				fmt.Fprintln(errOut, "Invalid feedback:")
				for _, f := range res.FieldErrors {
					fmt.Fprintf(errOut, "  %s: %s\n", f.Field, f.Message)
				}
				return errReported
			case services.OutcomeFailed:
				fmt.Fprintf(errOut, "%s: %s\n", res.Notification.Title, res.Notification.Description)
				return errReported
			}

			fmt.Fprintf(out, "%s: %s\n", res.Notification.Title, res.Notification.Description)
			fmt.Fprintf(out, "ID: %d\nCreated: %s\n", res.Response.ID, res.Response.CreatedAt)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Name, "name", "", "your name")
	flags.StringVar(&req.Email, "email", "", "your email address")
	flags.StringVar(&req.Message, "message", "", "the feedback text")
	return cmd
}
