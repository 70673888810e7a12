// =============================================================================
// enaxml - Attribute Mapper
// =============================================================================
//
// This module holds the value mapping shared by the schemas:
//   - keyword lookup: the first configured keyword found in a sample title
//     selects its canned description
//   - the IGNORE sentinel: optional cells holding IGNORE produce no attribute
//   - attribute lists: ordered TAG/VALUE(/UNITS) triples rendered as
//     <X_ATTRIBUTES><X_ATTRIBUTE>... blocks
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/ginjaninja78/enaxml/internal/config"
	"github.com/ginjaninja78/enaxml/internal/types"
	"github.com/ginjaninja78/enaxml/internal/xmlwriter"
)

// =============================================================================
// DESCRIPTIONS
// =============================================================================

// Describer maps sample titles to descriptions.
type Describer struct {
	entries  []config.KeywordDescription
	fallback string
}

// NewDescriber creates a Describer from the sample settings.
func NewDescriber(cfg config.SampleConfig) *Describer {
	return &Describer{
		entries:  cfg.Descriptions,
		fallback: cfg.DefaultDescription,
	}
}

// Describe returns the description of the first keyword contained in title,
// in declaration order. Matching ignores case, so "Blood sample A" matches
// the keyword "blood".
func (d *Describer) Describe(title string) string {
	lower := strings.ToLower(title)
	for _, e := range d.entries {
		if strings.Contains(lower, strings.ToLower(e.Keyword)) {
			return e.Description
		}
	}
	return d.fallback
}

// =============================================================================
// ATTRIBUTES
// =============================================================================

// Ignored reports whether a cell holds the IGNORE sentinel.
func Ignored(value string) bool {
	return value == config.Ignore
}

// Attributes is an ordered attribute list. Duplicate tags are kept.
type Attributes []types.Attribute

// Add appends an attribute.
func (a *Attributes) Add(tag, value string) {
	*a = append(*a, types.Attribute{Tag: tag, Value: value})
}

// AddUnits appends an attribute carrying units.
func (a *Attributes) AddUnits(tag, value, units string) {
	*a = append(*a, types.Attribute{Tag: tag, Value: value, Units: units})
}

// AddOptional appends an attribute unless value is the IGNORE sentinel.
func (a *Attributes) AddOptional(tag, value string) {
	if Ignored(value) {
		return
	}
	a.Add(tag, value)
}

// AddConfigured appends constant attributes from the profile.
func (a *Attributes) AddConfigured(list []config.AttributeConfig) {
	for _, c := range list {
		*a = append(*a, types.Attribute{Tag: c.Tag, Value: c.Value, Units: c.Units})
	}
}

// Element renders the list as a container named <prefix>_ATTRIBUTES holding
// one <prefix>_ATTRIBUTE per entry. UNITS is written only when set.
func (a Attributes) Element(prefix string) *xmlwriter.Element {
	container := xmlwriter.NewElement(prefix + "_ATTRIBUTES")
	for _, attr := range a {
		item := container.SubElement(prefix + "_ATTRIBUTE")
		item.TextElement("TAG", attr.Tag)
		item.TextElement("VALUE", attr.Value)
		if attr.Units != "" {
			item.TextElement("UNITS", attr.Units)
		}
	}
	return container
}

// =============================================================================
// TEMPLATES
// =============================================================================

// formatTitle fills the {instrument} placeholder of an experiment title.
func formatTitle(format, instrument string) string {
	return strings.ReplaceAll(format, config.InstrumentPlaceholder, instrument)
}
