package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newImportCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Submit every entry of a YAML or JSON file",
		Long: `Reads a list of feedback entries (name, email, message) from FILE and
submits them concurrently. Entries failing local validation are reported and
skipped. Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readEntries(cmd, args[0])
			if err != nil {
				return err
			}

			poolCfg := a.cfg.WorkerPool
			if cmd.Flags().Changed("workers") {
				if workers <= 0 {
					return fmt.Errorf("--workers must be positive")
				}
				poolCfg.MaxWorkers = workers
			}

			report := services.NewImportService(a.client(nil), poolCfg, nil).Import(cmd.Context(), entries)

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			for _, r := range report.Results {
				switch {
				case len(r.FieldErrors) > 0:
					for _, f := range r.FieldErrors {
						fmt.Fprintf(errOut, "entry %d: %s: %s\n", r.Index+1, f.Field, f.Message)
					}
				case r.Err != nil:
					fmt.Fprintf(errOut, "entry %d: %v\n", r.Index+1, r.Err)
				}
			}
			fmt.Fprintf(out, "Imported %d of %d entries (%d invalid, %d failed)\n",
				report.Submitted, len(entries), report.Invalid, report.Failed)

			if report.Submitted != len(entries) {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent submissions (defaults to the configured worker pool size)")
	return cmd
}

func readEntries(cmd *cobra.Command, path string) ([]types.FeedbackRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []types.FeedbackRequest
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return entries, nil
}
