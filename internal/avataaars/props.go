package avataaars

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names shared by the HTTP layer and FactoryURL.
const (
	ParamIsCircle        = "isCircle"
	ParamCircleColor     = "circleColor"
	ParamSkinColor       = "skinColor"
	ParamClothesColor    = "clothesColor"
	ParamHairColor       = "hairColor"
	ParamTopColor        = "topColor"
	ParamFacialHairColor = "facialHairColor"
	ParamClothes         = "clothes"
	ParamGraphicShirt    = "graphicShirt"
	ParamTop             = "top"
	ParamAccessories     = "accessories"
	ParamFacialHair      = "facialHair"
	ParamEyes            = "eyes"
	ParamEyebrows        = "eyebrows"
	ParamMouth           = "mouth"
	ParamHash            = "hash"
)

// Props is a partial avatar description. Empty strings and a nil IsCircle
// mean "unset"; Factory fills them with defaults.
type Props struct {
	IsCircle *bool

	CircleColor     string
	SkinColor       string
	ClothesColor    string
	HairColor       string
	TopColor        string
	FacialHairColor string

	Clothes      string
	GraphicShirt string
	Top          string
	Accessories  string
	FacialHair   string
	Eyes         string
	Eyebrows     string
	Mouth        string
}

// Avatar is a complete configuration, every field populated.
type Avatar struct {
	IsCircle bool

	CircleColor     string
	SkinColor       string
	ClothesColor    string
	HairColor       string
	TopColor        string
	FacialHairColor string

	Clothes      string
	GraphicShirt string
	Top          string
	Accessories  string
	FacialHair   string
	Eyes         string
	Eyebrows     string
	Mouth        string
}

// Clean drops categorical values that are not catalog members and colors
// that do not start with "#" and six hex digits. Valid colors are cut to
// exactly "#RRGGBB" so trailing input never reaches the markup.
// Clean is idempotent.
func Clean(p Props) Props {
	out := Props{
		CircleColor:     cleanColor(p.CircleColor),
		SkinColor:       cleanColor(p.SkinColor),
		ClothesColor:    cleanColor(p.ClothesColor),
		HairColor:       cleanColor(p.HairColor),
		TopColor:        cleanColor(p.TopColor),
		FacialHairColor: cleanColor(p.FacialHairColor),

		Clothes:      cleanOption(Clothes, p.Clothes),
		GraphicShirt: cleanOption(GraphicShirt, p.GraphicShirt),
		Top:          cleanOption(Tops, p.Top),
		Accessories:  cleanOption(Accessories, p.Accessories),
		FacialHair:   cleanOption(FacialHair, p.FacialHair),
		Eyes:         cleanOption(Eyes, p.Eyes),
		Eyebrows:     cleanOption(Eyebrows, p.Eyebrows),
		Mouth:        cleanOption(Mouths, p.Mouth),
	}
	if p.IsCircle != nil {
		v := *p.IsCircle
		out.IsCircle = &v
	}
	return out
}

func cleanOption(c *Catalog, v string) string {
	if c.Contains(v) {
		return v
	}
	return ""
}

func cleanColor(v string) string {
	if len(v) < 7 || v[0] != '#' || !IsHex6(v[1:7]) {
		return ""
	}
	return v[:7]
}

// IsHex6 reports whether s is exactly six hexadecimal digits.
func IsHex6(s string) bool {
	if len(s) != 6 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Factory fills every unset prop with its default.
func Factory(p Props) Avatar {
	a := Avatar{
		CircleColor:     or(p.CircleColor, DefaultCircleColor),
		SkinColor:       or(p.SkinColor, DefaultSkinColor),
		ClothesColor:    or(p.ClothesColor, DefaultClothesColor),
		HairColor:       or(p.HairColor, DefaultHairColor),
		TopColor:        or(p.TopColor, DefaultTopColor),
		FacialHairColor: or(p.FacialHairColor, DefaultFacialHairColor),

		Clothes:      or(p.Clothes, Clothes.Default()),
		GraphicShirt: or(p.GraphicShirt, GraphicShirt.Default()),
		Top:          or(p.Top, Tops.Default()),
		Accessories:  or(p.Accessories, Accessories.Default()),
		FacialHair:   or(p.FacialHair, FacialHair.Default()),
		Eyes:         or(p.Eyes, Eyes.Default()),
		Eyebrows:     or(p.Eyebrows, Eyebrows.Default()),
		Mouth:        or(p.Mouth, Mouths.Default()),
	}
	if p.IsCircle != nil {
		a.IsCircle = *p.IsCircle
	}
	return a
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Query encodes the set props using the public parameter names. Colors are
// written without the leading "#", the form the /svg endpoint accepts.
func (p Props) Query() url.Values {
	q := url.Values{}
	if p.IsCircle != nil {
		q.Set(ParamIsCircle, strconv.FormatBool(*p.IsCircle))
	}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	color := func(k, v string) {
		if v != "" {
			q.Set(k, strings.TrimPrefix(v, "#"))
		}
	}
	color(ParamCircleColor, p.CircleColor)
	color(ParamSkinColor, p.SkinColor)
	color(ParamClothesColor, p.ClothesColor)
	color(ParamHairColor, p.HairColor)
	color(ParamTopColor, p.TopColor)
	color(ParamFacialHairColor, p.FacialHairColor)
	set(ParamClothes, p.Clothes)
	set(ParamGraphicShirt, p.GraphicShirt)
	set(ParamTop, p.Top)
	set(ParamAccessories, p.Accessories)
	set(ParamFacialHair, p.FacialHair)
	set(ParamEyes, p.Eyes)
	set(ParamEyebrows, p.Eyebrows)
	set(ParamMouth, p.Mouth)
	return q
}

// Props returns the avatar as a fully-set Props value.
func (a Avatar) Props() Props {
	circle := a.IsCircle
	return Props{
		IsCircle:        &circle,
		CircleColor:     a.CircleColor,
		SkinColor:       a.SkinColor,
		ClothesColor:    a.ClothesColor,
		HairColor:       a.HairColor,
		TopColor:        a.TopColor,
		FacialHairColor: a.FacialHairColor,
		Clothes:         a.Clothes,
		GraphicShirt:    a.GraphicShirt,
		Top:             a.Top,
		Accessories:     a.Accessories,
		FacialHair:      a.FacialHair,
		Eyes:            a.Eyes,
		Eyebrows:        a.Eyebrows,
		Mouth:           a.Mouth,
	}
}
