package assets

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/crucial707/hci-itam/cmd/cli/output"
	"github.com/crucial707/hci-itam/internal/client"
	"github.com/crucial707/hci-itam/internal/csvio"
	"github.com/crucial707/hci-itam/internal/models"
	"github.com/spf13/cobra"
)

// ==========================
// SHOW
// ==========================
func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, _, err := opts.connect()
			if err != nil {
				return err
			}
			rec, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a := client.ToAsset(rec)
			if opts.json {
				return output.JSON(cmd.OutOrStdout(), a)
			}

			c, err := models.LookupCategory(rec.Category)
			if err != nil {
				c = models.MustCategory(models.CategoryAsset)
			}
			cols, vals := csvio.Columns(c), csvio.Row(c, a)
			rows := make([][]interface{}, 0, len(cols)+2)
			for i := range cols {
				rows = append(rows, []interface{}{cols[i], vals[i]})
			}
			if !a.UpdatedAt.IsZero() {
				rows = append(rows,
					[]interface{}{"Created", a.CreatedAt.Local().Format("2006-01-02 15:04")},
					[]interface{}{"Updated", a.UpdatedAt.Local().Format("2006-01-02 15:04")})
			}
			output.RenderKeyValue(cmd.OutOrStdout(), "", rows)
			return nil
		},
	}
}

// ==========================
// SUMMARY
// ==========================
func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count the category's assets by status, type and department",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cat, _, err := opts.connect()
			if err != nil {
				return err
			}
			s, err := store.Summary(cmd.Context(), cat.Name)
			if err != nil {
				return err
			}
			if opts.json {
				return output.JSON(cmd.OutOrStdout(), s)
			}
			printSummary(cmd.OutOrStdout(), cat, s)
			return nil
		},
	}
}

func printSummary(w io.Writer, c models.Category, s models.Summary) {
	fmt.Fprintf(w, "%s: %d total\n", c.Name, s.Total)

	var status [][]interface{}
	for _, st := range models.AllStatuses {
		if n, ok := s.ByStatus[st]; ok {
			status = append(status, []interface{}{st, n})
		}
	}
	output.RenderKeyValue(w, "Status", status)
	output.RenderKeyValue(w, "Type", countRows(s.ByType))
	output.RenderKeyValue(w, "Department", countRows(s.ByDepartment))
}

// countRows orders counts largest first, then by key. The empty key is shown
// as "(none)".
func countRows(counts map[string]int) [][]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	rows := make([][]interface{}, 0, len(keys))
	for _, k := range keys {
		label := k
		if label == "" {
			label = "(none)"
		}
		rows = append(rows, []interface{}{label, counts[k]})
	}
	return rows
}
