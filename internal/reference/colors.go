package reference

import "strings"

// Color is one entry of the color option table.
type Color struct {
	Name string `json:"name"` // Display name, e.g. "Navy"
	Hex  string `json:"hex"`  // Swatch color, e.g. "#1F2A44"
}

// ColorTable is a read-only lookup of known color options keyed by a
// case-insensitive name. Build it once at startup and share it; it has no
// mutating methods.
type ColorTable struct {
	byKey map[string]Color
}

var defaultColors = []Color{
	{Name: "Black", Hex: "#000000"},
	{Name: "White", Hex: "#FFFFFF"},
	{Name: "Gray", Hex: "#808080"},
	{Name: "Navy", Hex: "#1F2A44"},
	{Name: "Blue", Hex: "#2B6CB0"},
	{Name: "Sky Blue", Hex: "#87CEEB"},
	{Name: "Red", Hex: "#C53030"},
	{Name: "Burgundy", Hex: "#800020"},
	{Name: "Pink", Hex: "#ED64A6"},
	{Name: "Green", Hex: "#2F855A"},
	{Name: "Olive", Hex: "#708238"},
	{Name: "Beige", Hex: "#F5F5DC"},
	{Name: "Brown", Hex: "#6B4226"},
	{Name: "Yellow", Hex: "#ECC94B"},
	{Name: "Orange", Hex: "#DD6B20"},
	{Name: "Purple", Hex: "#6B46C1"},
}

// NewColorTable builds a table from the given colors. Later entries with the
// same name replace earlier ones.
func NewColorTable(colors []Color) *ColorTable {
	t := &ColorTable{byKey: make(map[string]Color, len(colors))}
	for _, c := range colors {
		t.byKey[key(c.Name)] = c
	}
	return t
}

// DefaultColorTable returns the storefront's standard color options.
func DefaultColorTable() *ColorTable {
	return NewColorTable(defaultColors)
}

// Lookup finds a color by name, ignoring case and surrounding spaces.
func (t *ColorTable) Lookup(name string) (Color, bool) {
	if t == nil {
		return Color{}, false
	}
	c, ok := t.byKey[key(name)]
	return c, ok
}

// Canonical returns the table's spelling of name, or the trimmed input when
// the color is not in the table.
func (t *ColorTable) Canonical(name string) string {
	if c, ok := t.Lookup(name); ok {
		return c.Name
	}
	return strings.TrimSpace(name)
}

func (t *ColorTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byKey)
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
