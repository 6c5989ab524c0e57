package avataaars

import "slices"

// Catalog is a fixed, ordered set of option names for one avatar feature.
// The first entry is not special; Default is chosen explicitly.
type Catalog struct {
	name   string
	def    string
	values []string
	index  map[string]struct{}
}

func newCatalog(name, def string, values ...string) *Catalog {
	c := &Catalog{
		name:   name,
		def:    def,
		values: values,
		index:  make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		c.index[v] = struct{}{}
	}
	if _, ok := c.index[def]; !ok {
		panic("avataaars: default " + def + " missing from catalog " + name)
	}
	return c
}

// Name is the query parameter the catalog validates.
func (c *Catalog) Name() string { return c.name }

// Default is the value Factory substitutes when the option is unset.
func (c *Catalog) Default() string { return c.def }

// Contains reports exact (case-sensitive) membership.
func (c *Catalog) Contains(v string) bool {
	_, ok := c.index[v]
	return ok
}

// Values returns a copy of the catalog in display order.
func (c *Catalog) Values() []string { return slices.Clone(c.values) }

// Len is the number of options.
func (c *Catalog) Len() int { return len(c.values) }

func (c *Catalog) at(i int) string { return c.values[i] }

var (
	Clothes = newCatalog(ParamClothes, "ShirtCrewNeck",
		"BlazerShirt",
		"BlazerSweater",
		"CollarSweater",
		"GraphicShirt",
		"Hoodie",
		"Overall",
		"ShirtCrewNeck",
		"ShirtScoopNeck",
		"ShirtVNeck",
	)

	GraphicShirt = newCatalog(ParamGraphicShirt, "Bat",
		"Bat",
		"Bear",
		"Cumbia",
		"Deer",
		"Diamond",
		"Hola",
		"Pizza",
		"Resist",
		"Selena",
		"Skull",
		"SkullOutline",
	)

	Tops = newCatalog(ParamTop, "ShortHairShortFlat",
		"NoHair",
		"Eyepatch",
		"Hat",
		"Hijab",
		"Turban",
		"WinterHat1",
		"WinterHat2",
		"WinterHat3",
		"WinterHat4",
		"LongHairBigHair",
		"LongHairBob",
		"LongHairBun",
		"LongHairCurly",
		"LongHairCurvy",
		"LongHairDreads",
		"LongHairFrida",
		"LongHairFro",
		"LongHairFroBand",
		"LongHairNotTooLong",
		"LongHairShavedSides",
		"LongHairMiaWallace",
		"LongHairStraight",
		"LongHairStraight2",
		"LongHairStraightStrand",
		"ShortHairDreads01",
		"ShortHairDreads02",
		"ShortHairFrizzle",
		"ShortHairShaggyMullet",
		"ShortHairShortCurly",
		"ShortHairShortFlat",
		"ShortHairShortRound",
		"ShortHairShortWaved",
		"ShortHairSides",
		"ShortHairTheCaesar",
		"ShortHairTheCaesarSidePart",
	)

	Accessories = newCatalog(ParamAccessories, "Blank",
		"Blank",
		"Kurt",
		"Prescription01",
		"Prescription02",
		"Round",
		"Sunglasses",
		"Wayfarers",
	)

	FacialHair = newCatalog(ParamFacialHair, "Blank",
		"Blank",
		"BeardMedium",
		"BeardLight",
		"BeardMajestic",
		"MoustacheFancy",
		"MoustacheMagnum",
	)

	Eyes = newCatalog(ParamEyes, "Default",
		"Close",
		"Cry",
		"Default",
		"Dizzy",
		"EyeRoll",
		"Happy",
		"Hearts",
		"Side",
		"Squint",
		"Surprised",
		"Wink",
		"WinkWacky",
	)

	Eyebrows = newCatalog(ParamEyebrows, "Default",
		"Angry",
		"AngryNatural",
		"Default",
		"DefaultNatural",
		"FlatNatural",
		"RaisedExcited",
		"RaisedExcitedNatural",
		"SadConcerned",
		"SadConcernedNatural",
		"UnibrowNatural",
		"UpDown",
		"UpDownNatural",
	)

	Mouths = newCatalog(ParamMouth, "Default",
		"Concerned",
		"Default",
		"Disbelief",
		"Eating",
		"Grimace",
		"Sad",
		"ScreamOpen",
		"Serious",
		"Smile",
		"Tongue",
		"Twinkle",
		"Vomit",
	)
)

// Catalogs lists every categorical catalog in query parameter order.
func Catalogs() []*Catalog {
	return []*Catalog{Clothes, GraphicShirt, Tops, Accessories, FacialHair, Eyes, Eyebrows, Mouths}
}
