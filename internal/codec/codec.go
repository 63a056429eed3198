// Package codec packs an AttributeBundle into the single free-text notes column
// of the store and recovers it again.
//
// The encoded form is a fixed sequence of "Label: value" segments joined by
// " | ", for example:
//
//	Server: db-1 | Description: primary db | Asset Checked: Yes | Remark: none
//
// Decoding is best effort. A value that itself contains " | " (or ends in " |"),
// or text that looks like another field's "Label:", is cut at that point; records
// written that way do not survive a round trip. Legacy notes are parsed as they
// are; no escaping is applied.
package codec

import (
	"regexp"
	"strings"

	"github.com/crucial707/hci-itam/internal/models"
)

// Separator joins the encoded segments.
const Separator = " | "

// Labels of the fields that follow the category-specific name label.
const (
	LabelDescription = "Description"
	LabelChecked     = "Asset Checked"
	LabelRemark      = "Remark"
)

const (
	yes = "Yes"
	no  = "No"
)

// Codec encodes and decodes notes for one category.
type Codec struct {
	nameLabel string

	name        *regexp.Regexp
	description *regexp.Regexp
	checked     *regexp.Regexp
	remark      *regexp.Regexp
}

// New returns the codec for category c.
func New(c models.Category) *Codec {
	label := c.NameLabel
	if label == "" {
		label = "Name"
	}
	return &Codec{
		nameLabel:   label,
		name:        fieldPattern(label),
		description: fieldPattern(LabelDescription),
		checked:     fieldPattern(LabelChecked),
		remark:      fieldPattern(LabelRemark),
	}
}

// fieldPattern captures everything after "label:" (one optional space) up to the
// next separator or the end of the text.
func fieldPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + regexp.QuoteMeta(label) + `: ?(.*?)(?: \| |$)`)
}

// NameLabel is the label the codec uses for AttributeBundle.Label.
func (c *Codec) NameLabel() string {
	return c.nameLabel
}

// Encode never fails; empty values are emitted so every segment is always present.
func (c *Codec) Encode(b models.AttributeBundle) string {
	return strings.Join([]string{
		c.nameLabel + ": " + b.Label,
		LabelDescription + ": " + b.Description,
		LabelChecked + ": " + FormatChecked(b.Checked),
		LabelRemark + ": " + b.Remark,
	}, Separator)
}

// Decode returns the zero bundle for empty or unrecognised text.
func (c *Codec) Decode(text string) models.AttributeBundle {
	return models.AttributeBundle{
		Label:       extract(c.name, text),
		Description: extract(c.description, text),
		Checked:     ParseChecked(extract(c.checked, text)),
		Remark:      extract(c.remark, text),
	}
}

func extract(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// FormatChecked renders the checked flag the way notes and CSV files carry it.
func FormatChecked(v bool) string {
	if v {
		return yes
	}
	return no
}

// ParseChecked is true only for "Yes", ignoring case and surrounding space.
func ParseChecked(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), yes)
}
