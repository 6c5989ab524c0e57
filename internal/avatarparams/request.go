package avatarparams

import (
	"net/url"

	"github.com/keithlinneman/avatars-web/internal/avataaars"
)

// Policy selects how colors are matched.
type Policy struct {
	// StrictColors requires exactly six hex digits instead of a six digit prefix.
	StrictColors bool
}

func (p Policy) color(raw string) Result[string] {
	if p.StrictColors {
		return ValidateColorStrict(raw)
	}
	return ValidateColor(raw)
}

// Request is the validated avatar configuration for one /svg call.
// It is a plain value and is never mutated after Parse returns it.
type Request struct {
	IsCircle Result[bool]

	CircleColor     Result[string]
	SkinColor       Result[string]
	ClothesColor    Result[string]
	HairColor       Result[string]
	TopColor        Result[string]
	FacialHairColor Result[string]

	Clothes      Result[string]
	GraphicShirt Result[string]
	Top          Result[string]
	Accessories  Result[string]
	FacialHair   Result[string]
	Eyes         Result[string]
	Eyebrows     Result[string]
	Mouth        Result[string]
}

// Parse validates every known parameter in q. It never fails; bad values
// are recorded as Rejected and otherwise ignored. Only the first value of
// a repeated parameter is considered.
func Parse(q url.Values, p Policy) Request {
	return Request{
		IsCircle: ParseBool(q.Get(avataaars.ParamIsCircle)),

		CircleColor:     p.color(q.Get(avataaars.ParamCircleColor)),
		SkinColor:       p.color(q.Get(avataaars.ParamSkinColor)),
		ClothesColor:    p.color(q.Get(avataaars.ParamClothesColor)),
		HairColor:       p.color(q.Get(avataaars.ParamHairColor)),
		TopColor:        p.color(q.Get(avataaars.ParamTopColor)),
		FacialHairColor: p.color(q.Get(avataaars.ParamFacialHairColor)),

		Clothes:      ValidateOption(avataaars.Clothes, q.Get(avataaars.ParamClothes)),
		GraphicShirt: ValidateOption(avataaars.GraphicShirt, q.Get(avataaars.ParamGraphicShirt)),
		Top:          ValidateOption(avataaars.Tops, q.Get(avataaars.ParamTop)),
		Accessories:  ValidateOption(avataaars.Accessories, q.Get(avataaars.ParamAccessories)),
		FacialHair:   ValidateOption(avataaars.FacialHair, q.Get(avataaars.ParamFacialHair)),
		Eyes:         ValidateOption(avataaars.Eyes, q.Get(avataaars.ParamEyes)),
		Eyebrows:     ValidateOption(avataaars.Eyebrows, q.Get(avataaars.ParamEyebrows)),
		Mouth:        ValidateOption(avataaars.Mouths, q.Get(avataaars.ParamMouth)),
	}
}

func (r Request) strings() []struct {
	name string
	res  Result[string]
} {
	return []struct {
		name string
		res  Result[string]
	}{
		{avataaars.ParamCircleColor, r.CircleColor},
		{avataaars.ParamSkinColor, r.SkinColor},
		{avataaars.ParamClothesColor, r.ClothesColor},
		{avataaars.ParamHairColor, r.HairColor},
		{avataaars.ParamTopColor, r.TopColor},
		{avataaars.ParamFacialHairColor, r.FacialHairColor},
		{avataaars.ParamClothes, r.Clothes},
		{avataaars.ParamGraphicShirt, r.GraphicShirt},
		{avataaars.ParamTop, r.Top},
		{avataaars.ParamAccessories, r.Accessories},
		{avataaars.ParamFacialHair, r.FacialHair},
		{avataaars.ParamEyes, r.Eyes},
		{avataaars.ParamEyebrows, r.Eyebrows},
		{avataaars.ParamMouth, r.Mouth},
	}
}

// Rejected lists the names of parameters that were supplied but invalid.
// isCircle is never rejected.
func (r Request) Rejected() []string {
	var out []string
	for _, f := range r.strings() {
		if f.res.Status == Rejected {
			out = append(out, f.name)
		}
	}
	return out
}

// Props converts the accepted fields into renderer props; everything else
// is left unset so the renderer picks its default.
func (r Request) Props() avataaars.Props {
	var p avataaars.Props
	if v, ok := r.IsCircle.Get(); ok {
		p.IsCircle = &v
	}
	p.CircleColor = r.CircleColor.Value
	p.SkinColor = r.SkinColor.Value
	p.ClothesColor = r.ClothesColor.Value
	p.HairColor = r.HairColor.Value
	p.TopColor = r.TopColor.Value
	p.FacialHairColor = r.FacialHairColor.Value
	p.Clothes = r.Clothes.Value
	p.GraphicShirt = r.GraphicShirt.Value
	p.Top = r.Top.Value
	p.Accessories = r.Accessories.Value
	p.FacialHair = r.FacialHair.Value
	p.Eyes = r.Eyes.Value
	p.Eyebrows = r.Eyebrows.Value
	p.Mouth = r.Mouth.Value
	return p
}
