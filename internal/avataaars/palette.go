package avataaars

import "slices"

// Swatch is a named color from one of the built-in palettes.
type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var (
	skinPalette = []Swatch{
		{"Tanned", "#FD9841"},
		{"Yellow", "#F8D25C"},
		{"Pale", "#FFDBB4"},
		{"Light", "#EDB98A"},
		{"Brown", "#D08B5B"},
		{"DarkBrown", "#AE5D29"},
		{"Black", "#614335"},
	}

	hairPalette = []Swatch{
		{"Auburn", "#A55728"},
		{"Black", "#2C1B18"},
		{"Blonde", "#B58143"},
		{"BlondeGolden", "#D6B370"},
		{"Brown", "#724133"},
		{"BrownDark", "#4A312C"},
		{"PastelPink", "#F59797"},
		{"Platinum", "#ECDCBF"},
		{"Red", "#C93305"},
		{"SilverGray", "#E8E1E1"},
	}

	// fabric colors are shared by clothes and hats
	fabricPalette = []Swatch{
		{"Black", "#262E33"},
		{"Blue01", "#65C9FF"},
		{"Blue02", "#5199E4"},
		{"Blue03", "#25557C"},
		{"Gray01", "#E6E6E6"},
		{"Gray02", "#929598"},
		{"Heather", "#3C4F5C"},
		{"PastelBlue", "#B1E2FF"},
		{"PastelGreen", "#A7FFC4"},
		{"PastelOrange", "#FFDEB5"},
		{"PastelRed", "#FFAFB9"},
		{"PastelYellow", "#FFFFB1"},
		{"Pink", "#FF488E"},
		{"Red", "#FF5C5C"},
		{"White", "#FFFFFF"},
	}

	circlePalette = []Swatch{
		{"Blue", "#65C9FF"},
		{"Mint", "#A7FFC4"},
		{"Peach", "#FFDEB5"},
		{"Rose", "#FFAFB9"},
		{"Lemon", "#FFFFB1"},
		{"Lavender", "#C9B6F2"},
	}
)

// Default colors used by Factory for unset color props.
const (
	DefaultCircleColor     = "#65C9FF"
	DefaultSkinColor       = "#EDB98A"
	DefaultClothesColor    = "#25557C"
	DefaultHairColor       = "#4A312C"
	DefaultTopColor        = "#3C4F5C"
	DefaultFacialHairColor = "#4A312C"
)

// Palettes returns copies of the built-in palettes keyed by the color
// parameter family they feed.
func Palettes() map[string][]Swatch {
	return map[string][]Swatch{
		"circle":  slices.Clone(circlePalette),
		"skin":    slices.Clone(skinPalette),
		"hair":    slices.Clone(hairPalette),
		"clothes": slices.Clone(fabricPalette),
		"top":     slices.Clone(fabricPalette),
	}
}
