package avataaars

import (
	"bytes"
	"context"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Component is a validated avatar ready to be serialized.
type Component struct {
	avatar Avatar
}

// NewComponent checks that every categorical field of a is a catalog member
// and every color is "#RRGGBB". Factory(Clean(p)) always passes.
func NewComponent(a Avatar) (*Component, error) {
	options := []struct {
		c *Catalog
		v string
	}{
		{Clothes, a.Clothes},
		{GraphicShirt, a.GraphicShirt},
		{Tops, a.Top},
		{Accessories, a.Accessories},
		{FacialHair, a.FacialHair},
		{Eyes, a.Eyes},
		{Eyebrows, a.Eyebrows},
		{Mouths, a.Mouth},
	}
	for _, o := range options {
		if !o.c.Contains(o.v) {
			return nil, xerrors.Newf("avataaars: %s %q is not a known option", o.c.Name(), o.v)
		}
	}

	colors := []struct {
		name string
		v    string
	}{
		{ParamCircleColor, a.CircleColor},
		{ParamSkinColor, a.SkinColor},
		{ParamClothesColor, a.ClothesColor},
		{ParamHairColor, a.HairColor},
		{ParamTopColor, a.TopColor},
		{ParamFacialHairColor, a.FacialHairColor},
	}
	for _, c := range colors {
		if len(c.v) != 7 || cleanColor(c.v) != c.v {
			return nil, xerrors.Newf("avataaars: %s %q is not a #RRGGBB color", c.name, c.v)
		}
	}

	return &Component{avatar: a}, nil
}

// Avatar returns the configuration the component renders.
func (c *Component) Avatar() Avatar { return c.avatar }

// Render writes the SVG document to w.
func (c *Component) Render(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// svgo drops write errors, so draw into memory and surface the copy error
	var buf bytes.Buffer
	draw(svg.New(&buf), c.avatar)
	_, err := w.Write(buf.Bytes())
	return xerrors.Wrap(err, "avataaars: write markup")
}

// Markup renders the SVG document into a byte slice.
func (c *Component) Markup(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
