package assets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/crucial707/hci-itam/internal/scheduler"
	"github.com/spf13/cobra"
)

func exportCmd(opts *options) *cobra.Command {
	var out, cronSpec string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered list as CSV, in list order",
		Long: `Export writes exactly the rows "list" shows for the same filters.
With --cron the export is repeated on a cron schedule until interrupted,
replacing --out each time.`,
		Args: cobra.NoArgs,
	}
	criteria := addFilterFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&cronSpec, "cron", "", `re-export on this schedule, e.g. "@hourly" or "0 6 * * *"`)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if cronSpec != "" {
			if out == "" {
				return errors.New("--cron needs --out")
			}
			if err := scheduler.Validate(cronSpec); err != nil {
				return err
			}
		}
		inv, err := opts.open(cmd)
		if err != nil {
			return err
		}
		defer inv.Close()

		export := func(ctx context.Context) error {
			if _, err := inv.Refresh(ctx); err != nil {
				return err
			}
			if out == "" {
				_, err := inv.Export(cmd.OutOrStdout(), criteria())
				return err
			}
			var n int
			err := writeFileAtomic(out, func(w io.Writer) error {
				var err error
				n, err = inv.Export(w, criteria())
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d %s rows to %s\n", n, inv.Category().Name, out)
			return nil
		}

		if cronSpec == "" {
			return export(cmd.Context())
		}
		return scheduler.Run(cmd.Context(), cronSpec, opts.logger(cmd), export)
	}
	return cmd
}
