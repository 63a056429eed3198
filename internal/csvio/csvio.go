// Package csvio defines the CSV row schema shared by export, the import template
// and import validation.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/crucial707/hci-itam/internal/codec"
	"github.com/crucial707/hci-itam/internal/ident"
	"github.com/crucial707/hci-itam/internal/models"
)

// Extension is the only file extension accepted for imports.
const Extension = ".csv"

// Fixed column names. The name column takes the category's NameLabel.
const (
	ColAssetID      = "Asset ID"
	ColCategory     = "Category"
	ColType         = "Type"
	ColDescription  = codec.LabelDescription
	ColBrand        = "Brand"
	ColModel        = "Model"
	ColSerialNumber = "Serial Number"
	ColAssetTag     = "Asset Tag"
	ColDepartment   = "Department"
	ColLocation     = "Location"
	ColCondition    = "Condition"
	ColStatus       = "Status"
	ColChecked      = codec.LabelChecked
	ColRemark       = codec.LabelRemark

	ColOSName          = "OS Name"
	ColOSVersion       = "OS Version"
	ColFirmwareVersion = "Firmware Version"
	ColIPAddress       = "IP Address"
)

var extensionColumns = map[models.Extension]string{
	models.ExtOSName:          ColOSName,
	models.ExtOSVersion:       ColOSVersion,
	models.ExtFirmwareVersion: ColFirmwareVersion,
	models.ExtIPAddress:       ColIPAddress,
}

// ErrHeader is returned when an import file's header does not match the schema.
var ErrHeader = errors.New("csv header does not match template")

// RowError reports an invalid data row. Line is 1-based and counts the header.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Columns returns the header for category c.
func Columns(c models.Category) []string {
	cols := []string{
		ColAssetID, ColCategory, ColType, nameColumn(c), ColDescription,
		ColBrand, ColModel, ColSerialNumber, ColAssetTag, ColDepartment,
		ColLocation, ColCondition, ColStatus, ColChecked, ColRemark,
	}
	for _, e := range c.Extensions {
		cols = append(cols, extensionColumns[e])
	}
	return cols
}

func nameColumn(c models.Category) string {
	return codec.New(c).NameLabel()
}

// Row renders a in column order.
func Row(c models.Category, a models.Asset) []string {
	serial := ""
	if a.SerialNumber != nil {
		serial = *a.SerialNumber
	}
	row := []string{
		a.ID, a.Category, a.Type, a.Attributes.Label, a.Attributes.Description,
		a.Brand, a.Model, serial, a.AssetTag, a.Department,
		a.Location, a.Condition, string(a.Status), codec.FormatChecked(a.Attributes.Checked), a.Attributes.Remark,
	}
	for _, e := range c.Extensions {
		row = append(row, extensionValue(a, e))
	}
	return row
}

func extensionValue(a models.Asset, e models.Extension) string {
	switch e {
	case models.ExtOSName:
		return a.OSName
	case models.ExtOSVersion:
		return a.OSVersion
	case models.ExtFirmwareVersion:
		return a.FirmwareVersion
	case models.ExtIPAddress:
		return a.IPAddress
	}
	return ""
}

func setExtension(a *models.Asset, e models.Extension, v string) {
	switch e {
	case models.ExtOSName:
		a.OSName = v
	case models.ExtOSVersion:
		a.OSVersion = v
	case models.ExtFirmwareVersion:
		a.FirmwareVersion = v
	case models.ExtIPAddress:
		a.IPAddress = v
	}
}

// Write emits the header and one row per asset, quoting every value.
func Write(w io.Writer, c models.Category, assets []models.Asset) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Columns(c)); err != nil {
		return err
	}
	for _, a := range assets {
		if err := writeRecord(bw, Row(c, a)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Template is the header-only file handed out for imports.
func Template(c models.Category) []byte {
	var sb strings.Builder
	_ = writeRecord(&sb, Columns(c))
	return []byte(sb.String())
}

func writeRecord(w io.StringWriter, fields []string) error {
	var sb strings.Builder
	for i, f := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(f, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteString("\r\n")
	_, err := w.WriteString(sb.String())
	return err
}

// Read parses an import file for category c. The header must list the template
// columns in order (case and surrounding space ignored). Rows carrying a
// different category are rejected; an empty category cell takes c. An empty
// Asset ID is left for the store to allocate.
func Read(r io.Reader, c models.Category) ([]models.Asset, error) {
	var out []models.Asset
	err := ReadEach(r, c, func(_ int, a models.Asset) error {
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadEach is Read calling fn for every parsed row with its line number. An
// error from fn stops the read and is returned as a *RowError for that line.
func ReadEach(r io.Reader, c models.Category, fn func(line int, a models.Asset) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return ErrHeader
	}
	if err != nil {
		return err
	}
	want := Columns(c)
	if !headerMatches(header, want) {
		return fmt.Errorf("%w: want %s", ErrHeader, strings.Join(want, ", "))
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return &RowError{Line: pe.StartLine, Err: pe.Err}
			}
			return err
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		if len(rec) != len(want) {
			return &RowError{Line: line, Err: fmt.Errorf("want %d fields, got %d", len(want), len(rec))}
		}
		a, err := parseRow(c, rec)
		if err == nil {
			err = fn(line, a)
		}
		if err != nil {
			return &RowError{Line: line, Err: err}
		}
	}
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		// Spreadsheet exports often start with a UTF-8 byte order mark.
		h := strings.TrimPrefix(got[i], "\ufeff")
		if !strings.EqualFold(strings.TrimSpace(h), want[i]) {
			return false
		}
	}
	return true
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(c models.Category, rec []string) (models.Asset, error) {
	v := func(i int) string { return strings.TrimSpace(rec[i]) }

	a := models.Asset{
		ID:       v(0),
		Category: strings.ToLower(v(1)),
		Type:     v(2),
		Attributes: models.AttributeBundle{
			Label:       v(3),
			Description: v(4),
			Checked:     codec.ParseChecked(v(13)),
			Remark:      v(14),
		},
		Brand:      v(5),
		Model:      v(6),
		AssetTag:   v(8),
		Department: v(9),
		Location:   v(10),
		Condition:  v(11),
		Status:     models.Status(strings.ToLower(v(12))),
	}
	if s := v(7); s != "" {
		a.SerialNumber = &s
	}
	for i, e := range c.Extensions {
		setExtension(&a, e, v(15+i))
	}

	if a.Category == "" {
		a.Category = c.Name
	}
	if a.Category != c.Name {
		return a, fmt.Errorf("category %q does not match %q", a.Category, c.Name)
	}
	if a.ID != "" && !ident.Belongs(c, a.ID) {
		return a, fmt.Errorf("asset id %q does not carry the %s- prefix of %s", a.ID, c.Prefix, c.Name)
	}
	if a.Status == "" {
		a.Status = models.StatusAvailable
	}
	if !a.Status.ValidFor(c) {
		return a, fmt.Errorf("status %q is not valid for %s", a.Status, c.Name)
	}
	return a, nil
}
