package avataaars

import (
	"math/rand/v2"
	"strings"

	"github.com/keithlinneman/avatars-web/internal/cryptoutil"
)

// Rand is the subset of math/rand/v2 used to pick random options.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the math/rand/v2 global source, safe for concurrent use.
var DefaultRand Rand = globalRand{}

// Random returns a fully populated, randomized Props. Facial hair follows
// the hair color so random avatars stay coherent.
func Random(r Rand) Props {
	if r == nil {
		r = DefaultRand
	}
	pick := func(c *Catalog) string { return c.at(r.IntN(c.Len())) }
	swatch := func(p []Swatch) string { return p[r.IntN(len(p))].Hex }

	circle := r.IntN(2) == 1
	hair := swatch(hairPalette)
	return Props{
		IsCircle:        &circle,
		CircleColor:     swatch(circlePalette),
		SkinColor:       swatch(skinPalette),
		ClothesColor:    swatch(fabricPalette),
		HairColor:       hair,
		TopColor:        swatch(fabricPalette),
		FacialHairColor: hair,
		Clothes:         pick(Clothes),
		GraphicShirt:    pick(GraphicShirt),
		Top:             pick(Tops),
		Accessories:     pick(Accessories),
		FacialHair:      pick(FacialHair),
		Eyes:            pick(Eyes),
		Eyebrows:        pick(Eyebrows),
		Mouth:           pick(Mouths),
	}
}

// hashLen is the number of hex characters of the query digest put in URLs.
const hashLen = 16

// FactoryURL builds a shareable /svg URL for p on domain. The URL carries a
// hash of its own query so the endpoint can serve it as immutable. A domain
// without a scheme is treated as https; an empty domain yields a path-only URL.
func FactoryURL(p Props, domain string) string {
	q := p.Query()
	q.Set(ParamHash, QueryHash(q.Encode()))
	return Origin(domain) + "/svg?" + q.Encode()
}

// QueryHash is the content hash FactoryURL embeds for an encoded query.
func QueryHash(encoded string) string {
	return cryptoutil.SHA256Hex([]byte(encoded))[:hashLen]
}

// Origin normalizes a configured self domain into a URL origin.
func Origin(domain string) string {
	d := strings.TrimRight(strings.TrimSpace(domain), "/")
	if d == "" {
		return ""
	}
	if strings.Contains(d, "://") {
		return d
	}
	return "https://" + d
}
