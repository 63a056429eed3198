package assets

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/crucial707/hci-itam/cmd/cli/config"
	"github.com/crucial707/hci-itam/cmd/cli/output"
	"github.com/crucial707/hci-itam/cmd/cli/root"
	"github.com/crucial707/hci-itam/internal/client"
	"github.com/crucial707/hci-itam/internal/codec"
	"github.com/crucial707/hci-itam/internal/csvio"
	"github.com/crucial707/hci-itam/internal/filter"
	"github.com/crucial707/hci-itam/internal/inventory"
	"github.com/crucial707/hci-itam/internal/models"
	"github.com/spf13/cobra"
)

// options are the flags shared by every assets subcommand.
type options struct {
	category string
	json     bool
	verbose  bool
}

// ==========================
// Init Assets
// ==========================
func InitAssets(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewCommand())
}

// NewCommand returns the assets command group.
func NewCommand() *cobra.Command {
	opts := &options{}

	assetsCmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage the assets of one category",
	}
	assetsCmd.PersistentFlags().StringVarP(&opts.category, "category", "c", "",
		"category: "+strings.Join(models.CategoryNames(), ", ")+" (default from config.toml)")
	assetsCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of a table")
	assetsCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and refreshes")

	assetsCmd.AddCommand(
		listAssetsCmd(opts),
		createAssetCmd(opts),
		updateAssetCmd(opts),
		deleteAssetCmd(opts),
		bulkDeleteCmd(opts),
		importCmd(opts),
		exportCmd(opts),
		templateCmd(opts),
		nextIDCmd(opts),
		categoriesCmd(opts),
		showCmd(opts),
		summaryCmd(opts),
	)
	return assetsCmd
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *options) resolveCategory() (models.Category, config.Settings, error) {
	settings, err := root.Settings()
	if err != nil {
		return models.Category{}, settings, err
	}
	name := o.category
	if name == "" {
		name = settings.Category
	}
	cat, err := models.LookupCategory(name)
	if err != nil {
		return models.Category{}, settings, fmt.Errorf("%w (known: %s)", err, strings.Join(models.CategoryNames(), ", "))
	}
	return cat, settings, nil
}

// connect returns an API client for the logged-in user and the selected category.
func (o *options) connect() (*client.HTTPClient, models.Category, config.Settings, error) {
	cat, settings, err := o.resolveCategory()
	if err != nil {
		return nil, models.Category{}, settings, err
	}
	token, err := config.ReadToken()
	if err != nil {
		return nil, models.Category{}, settings, err
	}
	return client.NewHTTPClient(settings.APIURL, token), cat, settings, nil
}

// open builds an inventory for the selected category backed by the API.
func (o *options) open(cmd *cobra.Command) (*inventory.Inventory, error) {
	store, cat, settings, err := o.connect()
	if err != nil {
		return nil, err
	}
	return inventory.New(store, cat, inventory.Options{
		HighlightWindow: settings.HighlightWindow,
		Logger:          o.logger(cmd),
	}), nil
}

// ==========================
// Rendering
// ==========================
func tableHeaders(c models.Category) []string {
	headers := []string{"", "ID", c.NameLabel, "Type", "Brand", "Model", "Status", "Department", "Location", codec.LabelChecked}
	for _, e := range c.Extensions {
		headers = append(headers, extensionHeader(e))
	}
	return headers
}

func extensionHeader(e models.Extension) string {
	switch e {
	case models.ExtOSName:
		return "OS"
	case models.ExtOSVersion:
		return "OS Version"
	case models.ExtFirmwareVersion:
		return "Firmware"
	case models.ExtIPAddress:
		return "IP"
	}
	return string(e)
}

func tableRow(c models.Category, a models.Asset, marked bool) []interface{} {
	marker := ""
	if marked {
		marker = "*"
	}
	row := []interface{}{
		marker, a.ID, a.Attributes.Label, a.Type, a.Brand, a.Model, a.Status,
		a.Department, a.Location, codec.FormatChecked(a.Attributes.Checked),
	}
	for _, e := range c.Extensions {
		switch e {
		case models.ExtOSName:
			row = append(row, a.OSName)
		case models.ExtOSVersion:
			row = append(row, a.OSVersion)
		case models.ExtFirmwareVersion:
			row = append(row, a.FirmwareVersion)
		case models.ExtIPAddress:
			row = append(row, a.IPAddress)
		}
	}
	return row
}

// printList renders list; the entry with identifier highlightID is marked.
func (o *options) printList(w io.Writer, c models.Category, list []models.Asset, highlightID string) error {
	if o.json {
		return output.JSON(w, list)
	}
	rows := make([][]interface{}, 0, len(list))
	var emphasized []int
	for i, a := range list {
		marked := highlightID != "" && a.ID == highlightID
		if marked {
			emphasized = append(emphasized, i)
		}
		rows = append(rows, tableRow(c, a, marked))
	}
	output.RenderTable(w, tableHeaders(c), rows, emphasized...)
	return nil
}

func (o *options) printAsset(w io.Writer, verb string, a models.Asset) error {
	if o.json {
		return output.JSON(w, a)
	}
	fmt.Fprintf(w, "%s %s\n", verb, a.ID)
	return nil
}

// ==========================
// Flags
// ==========================

// addFilterFlags registers the list criteria and returns a getter for them.
func addFilterFlags(cmd *cobra.Command) func() filter.Criteria {
	var c filter.Criteria
	var status string
	cmd.Flags().StringVarP(&c.Search, "search", "s", "", "substring of id, name, description, model or asset tag")
	cmd.Flags().StringVar(&status, "status", "", "exact status")
	cmd.Flags().StringVar(&c.Type, "type", "", "exact type")
	cmd.Flags().StringVar(&c.Department, "department", "", "exact department")
	cmd.Flags().StringVar(&c.Location, "location", "", "substring of location")
	return func() filter.Criteria {
		c.Status = models.Status(status)
		return c
	}
}

// assetFlags holds the editable fields. Only flags set on the command line are
// applied, so update keeps every other field as stored.
type assetFlags struct {
	label, description, remark                    string
	checked                                       bool
	typ, brand, model, serial, assetTag           string
	department, location, condition, status       string
	osName, osVersion, firmwareVersion, ipAddress string
}

func (f *assetFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.label, "name", "", "human name (stored in notes)")
	fs.StringVar(&f.description, "description", "", "description (stored in notes)")
	fs.BoolVar(&f.checked, "checked", false, "mark the asset as checked")
	fs.StringVar(&f.remark, "remark", "", "remark (stored in notes)")
	fs.StringVar(&f.typ, "type", "", "type or appliance subtype")
	fs.StringVar(&f.brand, "brand", "", "brand")
	fs.StringVar(&f.model, "model", "", "model")
	fs.StringVar(&f.serial, "serial", "", "serial number; empty clears it")
	fs.StringVar(&f.assetTag, "asset-tag", "", "asset tag")
	fs.StringVar(&f.department, "department", "", "department")
	fs.StringVar(&f.location, "location", "", "location")
	fs.StringVar(&f.condition, "condition", "", "condition")
	fs.StringVar(&f.status, "status", "", "available, pending_for_signature (servers), in_use, maintenance or retired")
	fs.StringVar(&f.osName, "os-name", "", "operating system (servers)")
	fs.StringVar(&f.osVersion, "os-version", "", "operating system version (servers)")
	fs.StringVar(&f.firmwareVersion, "firmware", "", "firmware version (routers, firewalls, switches)")
	fs.StringVar(&f.ipAddress, "ip", "", "management IP address (routers, firewalls, switches)")
}

var extensionFlags = map[string]models.Extension{
	"os-name":    models.ExtOSName,
	"os-version": models.ExtOSVersion,
	"firmware":   models.ExtFirmwareVersion,
	"ip":         models.ExtIPAddress,
}

// apply copies the changed flags onto a and reports how many were applied.
func (f *assetFlags) apply(cmd *cobra.Command, c models.Category, a *models.Asset) (int, error) {
	fs := cmd.Flags()
	for name, ext := range extensionFlags {
		if fs.Changed(name) && !c.Has(ext) {
			return 0, fmt.Errorf("--%s does not apply to %s", name, c.Name)
		}
	}

	changed := 0
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
			changed++
		}
	}
	set("name", &a.Attributes.Label, f.label)
	set("description", &a.Attributes.Description, f.description)
	set("remark", &a.Attributes.Remark, f.remark)
	set("type", &a.Type, f.typ)
	set("brand", &a.Brand, f.brand)
	set("model", &a.Model, f.model)
	set("asset-tag", &a.AssetTag, f.assetTag)
	set("department", &a.Department, f.department)
	set("location", &a.Location, f.location)
	set("condition", &a.Condition, f.condition)
	set("os-name", &a.OSName, f.osName)
	set("os-version", &a.OSVersion, f.osVersion)
	set("firmware", &a.FirmwareVersion, f.firmwareVersion)
	set("ip", &a.IPAddress, f.ipAddress)
	if fs.Changed("checked") {
		a.Attributes.Checked = f.checked
		changed++
	}
	if fs.Changed("status") {
		a.Status = models.Status(f.status)
		changed++
	}
	if fs.Changed("serial") {
		if f.serial == "" {
			a.SerialNumber = nil
		} else {
			s := f.serial
			a.SerialNumber = &s
		}
		changed++
	}
	return changed, nil
}

// ==========================
// LIST
// ==========================
func listAssetsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assets, highlighted entry first, then by identifier",
		Args:  cobra.NoArgs,
	}
	criteria := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		inv, err := opts.open(cmd)
		if err != nil {
			return err
		}
		defer inv.Close()

		view, err := inv.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return opts.printList(cmd.OutOrStdout(), inv.Category(), inv.View(criteria()), view.Highlight.ID)
	}
	return cmd
}

// ==========================
// CREATE
// ==========================
func createAssetCmd(opts *options) *cobra.Command {
	var fields assetFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an asset with the next free identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer inv.Close()

			draft := models.Asset{Status: models.StatusAvailable}
			if _, err := fields.apply(cmd, inv.Category(), &draft); err != nil {
				return err
			}
			// Allocation reads the freshly listed identifiers.
			if _, err := inv.Refresh(cmd.Context()); err != nil {
				return err
			}
			created, err := inv.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			return opts.printAsset(cmd.OutOrStdout(), "Created", created)
		},
	}
	fields.register(cmd)
	return cmd
}

// ==========================
// UPDATE
// ==========================
func updateAssetCmd(opts *options) *cobra.Command {
	var fields assetFlags
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update an asset and show it first in the refreshed list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			inv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer inv.Close()

			if _, err := inv.Refresh(cmd.Context()); err != nil {
				return err
			}
			current, err := inv.Get(id)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			n, err := fields.apply(cmd, inv.Category(), &current)
			if err != nil {
				return err
			}
			if n == 0 {
				return errors.New("nothing to update: pass at least one field flag")
			}
			if _, err := inv.Update(cmd.Context(), id, current); err != nil {
				return err
			}
			view := inv.Snapshot()
			return opts.printList(cmd.OutOrStdout(), inv.Category(), view.Assets, view.Highlight.ID)
		},
	}
	fields.register(cmd)
	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteAssetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer inv.Close()

			if err := inv.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Asset %s deleted\n", args[0])
			return nil
		},
	}
}

func bulkDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "bulk-delete",
		Short: "Delete every asset of the category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer inv.Close()

			if !yes {
				return fmt.Errorf("refusing to delete every %s without --yes", inv.Category().Name)
			}
			res, err := inv.BulkDelete(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return output.JSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s records\n", res.DeletedCount, inv.Category().Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

// ==========================
// IMPORT / EXPORT / TEMPLATE
// ==========================
func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import rows from a CSV file; rows whose identifier exists are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer inv.Close()

			res, err := inv.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.json {
				return output.JSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, skipped %d\n", res.ImportedCount, res.SkippedCount)
			return nil
		},
	}
}

func templateCmd(opts *options) *cobra.Command {
	var out string
	var offline bool
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the CSV import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if offline {
				cat, _, err := opts.resolveCategory()
				if err != nil {
					return err
				}
				data = csvio.Template(cat)
			} else {
				inv, err := opts.open(cmd)
				if err != nil {
					return err
				}
				defer inv.Close()
				if data, err = inv.Template(cmd.Context()); err != nil {
					return err
				}
			}
			if out == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			return writeFileAtomic(out, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&offline, "offline", false, "build the template locally instead of asking the API")
	return cmd
}

func nextIDCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Print the identifier the next create would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer inv.Close()
			if _, err := inv.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), inv.NextID())
			return nil
		},
	}
}

func categoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the known categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := models.CategoryNames()
			if opts.json {
				return output.JSON(cmd.OutOrStdout(), names)
			}
			rows := make([][]interface{}, 0, len(names))
			for _, n := range names {
				c := models.MustCategory(n)
				rows = append(rows, []interface{}{c.Name, c.Prefix, c.NameLabel})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"Category", "Prefix", "Name Label"}, rows)
			return nil
		},
	}
}

// writeFileAtomic writes through a temporary file in the target directory and
// renames it into place, so readers never see a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
