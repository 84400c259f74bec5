package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const emptyListText = "No feedback yet."

type listOptions struct {
	page   int
	size   int
	all    bool
	output string
}

func newListCmd(a *app) *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback entries, newest first",
		Example: `  feedback list
  feedback list --page 2 --size 20
  feedback list --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unsupported output format %q (want table, json or yaml)", opts.output)
			}
			if opts.page < 0 {
				return fmt.Errorf("--page must not be negative")
			}
			if !cmd.Flags().Changed("size") {
				opts.size = a.cfg.API.PageSize
			}
			if opts.size <= 0 {
				return fmt.Errorf("--size must be positive")
			}

			if opts.all {
				return runListAll(cmd, a, opts)
			}
			return runListPage(cmd, a, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.page, "page", 0, "zero-based page to show")
	flags.IntVar(&opts.size, "size", 10, "entries per page (defaults to the configured page size)")
	flags.BoolVar(&opts.all, "all", false, "fetch every page")
	flags.StringVarP(&opts.output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func runListPage(cmd *cobra.Command, a *app, opts listOptions) error {
	page, err := a.client(nil).GetFeedbacksPage(cmd.Context(), opts.page, opts.size)
	if err != nil {
		return fmt.Errorf("failed to load feedbacks: %w", err)
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case "json":
		return writeJSON(out, page)
	case "yaml":
		return writeYAML(out, page)
	}

	if len(page.Items) == 0 {
		fmt.Fprintln(out, emptyListText)
		return nil
	}
	fmt.Fprintln(out, renderTable(page.Items))
	fmt.Fprintf(out, "Page %d of %d (%d total)\n", page.Page+1, max(page.TotalPages, 1), page.TotalElements)
	if page.HasNext {
		fmt.Fprintf(out, "More: feedback list --page %d --size %d\n", page.Page+1, opts.size)
	} else {
		fmt.Fprintln(out, "End of list")
	}
	return nil
}

func runListAll(cmd *cobra.Command, a *app, opts listOptions) error {
	ctx := cmd.Context()
	list := services.NewFeedbackListService(a.client(nil), services.WithPageSize(opts.size))

	if err := list.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load feedbacks: %w", err)
	}
	for list.Snapshot().HasMore {
		if err := list.FetchMore(ctx); err != nil {
			return fmt.Errorf("failed to load feedbacks: %w", err)
		}
	}

	items := list.Snapshot().Items
	out := cmd.OutOrStdout()
	switch opts.output {
	case "json":
		return writeJSON(out, items)
	case "yaml":
		return writeYAML(out, items)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, emptyListText)
		return nil
	}
	fmt.Fprintln(out, renderTable(items))
	fmt.Fprintf(out, "%d entries\n", len(items))
	return nil
}

func renderTable(items []types.FeedbackResponse) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CREATED", "MESSAGE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, it := range items {
		t.Row(strconv.FormatInt(it.ID, 10), it.Name, displayTime(it), oneLine(it.Message, 60))
	}
	return t.Render()
}

// displayTime shows createdAt in local time, or verbatim when it does not parse.
func displayTime(f types.FeedbackResponse) string {
	ts, err := f.CreatedTime()
	if err != nil {
		return f.CreatedAt
	}
	return ts.Local().Format(time.DateTime)
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
