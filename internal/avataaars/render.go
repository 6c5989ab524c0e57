package avataaars

import (
	"fmt"

	svg "github.com/ajstarks/svgo"
)

// Canvas geometry. The face is centered on x=132 with the eyes on y=100.
const (
	canvasWidth  = 264
	canvasHeight = 280

	faceX  = 132
	eyeY   = 100
	leftX  = 108
	rightX = 156

	clipID = "avatar-circle"
)

const (
	// clips everything below the circle while letting hair spill over the top
	circleClip = "M12,160 a120,120 0 0,0 240,0 L252,0 L12,0 Z"

	torso = "M32,280 L32,252 C32,222 64,204 100,200 L164,200 C200,204 232,222 232,252 L232,280 Z"

	shade   = "fill:#000000;fill-opacity:0.1"
	inkFill = "fill:#000000;fill-opacity:0.7"
	white   = "fill:#FFFFFF"
)

func fill(color string) string { return "fill:" + color }

func fillOpacity(color string, o float64) string {
	return fmt.Sprintf("fill:%s;fill-opacity:%g", color, o)
}

func stroke(color string, width int) string {
	return fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d;stroke-linecap:round;stroke-linejoin:round", color, width)
}

func ink(width int) string {
	return fmt.Sprintf("fill:none;stroke:#000000;stroke-opacity:0.6;stroke-width:%d;stroke-linecap:round", width)
}

// draw writes the full document. Layers are painted back to front.
func draw(c *svg.SVG, a Avatar) {
	c.Startview(canvasWidth, canvasHeight, 0, 0, canvasWidth, canvasHeight)
	c.Title("Avatar")

	if a.IsCircle {
		c.Def()
		c.ClipPath(`id="` + clipID + `"`)
		c.Path(circleClip)
		c.ClipEnd()
		c.DefEnd()
		c.Circle(faceX, 160, 120, fill(a.CircleColor))
		c.Group(`clip-path="url(#` + clipID + `)"`)
	}

	drawTopBack(c, a)
	drawNeck(c, a.SkinColor)
	drawBody(c, a)
	drawHead(c, a.SkinColor)
	drawFacialHair(c, a.FacialHair, a.FacialHairColor, false)
	drawMouth(c, a.Mouth)
	drawFacialHair(c, a.FacialHair, a.FacialHairColor, true)
	drawNose(c)
	drawEyes(c, a.Eyes)
	drawEyebrows(c, a.Eyebrows)
	drawTopFront(c, a)
	drawAccessories(c, a.Accessories)

	if a.IsCircle {
		c.Gend()
	}
	c.End()
}

func drawNeck(c *svg.SVG, skin string) {
	c.Rect(112, 150, 40, 56, fill(skin))
	c.Path("M112,166 C118,180 146,180 152,166 L152,182 C146,194 118,194 112,182 Z", shade)
}

func drawHead(c *svg.SVG, skin string) {
	c.Ellipse(80, 110, 9, 14, fill(skin))
	c.Ellipse(184, 110, 9, 14, fill(skin))
	c.Ellipse(faceX, 106, 52, 62, fill(skin))
}

func drawNose(c *svg.SVG) {
	c.Path("M124,120 Q132,128 140,120", "fill:none;stroke:#000000;stroke-opacity:0.16;stroke-width:3;stroke-linecap:round")
}

func drawBody(c *svg.SVG, a Avatar) {
	col := a.ClothesColor
	switch a.Clothes {
	case "BlazerShirt":
		c.Path(torso, fill("#E6E6E6"))
		c.Polygon([]int{112, 132, 152}, []int{200, 236, 200}, white)
		drawBlazer(c, col)
	case "BlazerSweater":
		c.Path(torso, fill(col))
		c.Path("M110,200 Q132,222 154,200", stroke("#000000", 2))
		drawBlazer(c, "#262E33")
	case "CollarSweater":
		c.Path(torso, fill(col))
		c.Polygon([]int{106, 132, 116}, []int{196, 214, 230}, shade)
		c.Polygon([]int{158, 132, 148}, []int{196, 214, 230}, shade)
	case "GraphicShirt":
		drawCrewNeck(c, col)
		drawGraphic(c, a.GraphicShirt)
	case "Hoodie":
		c.Path(torso, fill(col))
		c.Path("M100,200 C104,232 160,232 164,200 L156,198 C150,220 114,220 108,198 Z", shade)
		c.Line(122, 224, 120, 258, stroke("#F4F4F4", 3))
		c.Line(142, 224, 144, 258, stroke("#F4F4F4", 3))
	case "Overall":
		c.Path(torso, white)
		c.Rect(96, 232, 72, 48, fill(col))
		c.Line(100, 232, 92, 204, stroke(col, 8))
		c.Line(164, 232, 172, 204, stroke(col, 8))
		c.Circle(104, 240, 3, fill("#F4F4F4"))
		c.Circle(160, 240, 3, fill("#F4F4F4"))
	case "ShirtScoopNeck":
		c.Path(torso, fill(col))
		c.Path("M104,200 Q132,242 160,200 Z", fill(a.SkinColor))
	case "ShirtVNeck":
		c.Path(torso, fill(col))
		c.Polygon([]int{108, 132, 156}, []int{200, 234, 200}, fill(a.SkinColor))
	default:
		drawCrewNeck(c, col)
	}
}

func drawCrewNeck(c *svg.SVG, col string) {
	c.Path(torso, fill(col))
	c.Path("M108,200 Q132,220 156,200", "fill:none;stroke:#000000;stroke-opacity:0.16;stroke-width:3")
}

func drawBlazer(c *svg.SVG, col string) {
	c.Path("M32,280 L32,252 C32,222 64,204 100,200 L114,200 L128,280 Z", fill(col))
	c.Path("M232,280 L232,252 C232,222 200,204 164,200 L150,200 L136,280 Z", fill(col))
	c.Polygon([]int{100, 114, 120}, []int{200, 200, 240}, shade)
	c.Polygon([]int{164, 150, 144}, []int{200, 200, 240}, shade)
}

func drawGraphic(c *svg.SVG, name string) {
	const text = "fill:#FFFFFF;font-family:Arial,Helvetica,sans-serif;font-size:14px;font-weight:bold;text-anchor:middle"
	switch name {
	case "Bear":
		c.Circle(122, 240, 5, white)
		c.Circle(142, 240, 5, white)
		c.Circle(faceX, 252, 12, white)
	case "Cumbia", "Hola", "Resist", "Selena":
		label := map[string]string{"Cumbia": "CUMBIA", "Hola": "HOLA", "Resist": "RESIST", "Selena": "SELENA"}[name]
		c.Text(faceX, 256, label, text)
	case "Deer":
		c.Circle(faceX, 256, 8, white)
		c.Path("M126,250 L118,236 M122,243 L114,242 M138,250 L146,236 M142,243 L150,242", stroke("#FFFFFF", 2))
	case "Diamond":
		c.Polygon([]int{132, 146, 132, 118}, []int{236, 250, 266, 250}, white)
	case "Pizza":
		c.Polygon([]int{118, 146, 132}, []int{238, 238, 266}, fill("#FFDEB5"))
		c.Circle(128, 244, 3, fill("#FF5C5C"))
		c.Circle(137, 248, 3, fill("#FF5C5C"))
		c.Circle(132, 256, 2, fill("#FF5C5C"))
	case "Skull":
		c.Circle(faceX, 248, 12, white)
		c.Rect(124, 256, 16, 8, white)
		c.Circle(127, 248, 3, inkFill)
		c.Circle(137, 248, 3, inkFill)
	case "SkullOutline":
		c.Circle(faceX, 248, 12, stroke("#FFFFFF", 2))
		c.Rect(124, 258, 16, 6, stroke("#FFFFFF", 2))
		c.Circle(127, 248, 3, white)
		c.Circle(137, 248, 3, white)
	default:
		c.Path("M108,246 Q114,236 120,244 Q126,236 132,242 Q138,236 144,244 Q150,236 156,246 Q144,252 132,262 Q120,252 108,246 Z", white)
	}
}

// drawFacialHair paints beards below the mouth layer and moustaches above it.
func drawFacialHair(c *svg.SVG, name, col string, overMouth bool) {
	switch name {
	case "BeardLight":
		if !overMouth {
			c.Path("M82,112 C84,156 104,176 132,176 C160,176 180,156 182,112 C178,140 164,150 150,148 C142,140 122,140 114,148 C100,150 86,140 82,112 Z", fillOpacity(col, 0.6))
		}
	case "BeardMedium":
		if !overMouth {
			c.Path("M80,108 C82,166 104,190 132,190 C160,190 182,166 184,108 C180,142 166,152 150,150 C142,140 122,140 114,150 C98,152 84,142 80,108 Z", fill(col))
		}
	case "BeardMajestic":
		if !overMouth {
			c.Path("M80,104 C80,190 110,216 132,220 C154,216 184,190 184,104 C180,142 166,152 150,150 C142,140 122,140 114,150 C98,152 84,142 80,104 Z", fill(col))
		}
	case "MoustacheFancy":
		if overMouth {
			c.Path("M132,128 C122,122 108,126 104,136 C100,130 100,124 104,120 C110,126 122,120 132,124 C142,120 154,126 160,120 C164,124 164,130 160,136 C156,126 142,122 132,128 Z", fill(col))
		}
	case "MoustacheMagnum":
		if overMouth {
			c.Path("M132,124 C118,120 104,126 100,140 C110,134 122,134 132,132 C142,134 154,134 164,140 C160,126 146,120 132,124 Z", fill(col))
		}
	}
}

func drawMouth(c *svg.SVG, name string) {
	const tongue = "fill:#FF4F6D"
	switch name {
	case "Concerned":
		c.Path("M114,148 Q132,124 150,148 Z", inkFill)
		c.Rect(122, 134, 20, 5, white)
	case "Disbelief":
		c.Path("M116,146 Q132,132 148,146", ink(3))
	case "Eating":
		c.Path("M116,140 Q132,134 148,140", ink(3))
		c.Circle(98, 130, 10, "fill:#FF4646;fill-opacity:0.2")
		c.Circle(166, 130, 10, "fill:#FF4646;fill-opacity:0.2")
	case "Grimace":
		c.Roundrect(110, 132, 44, 16, 8, 8, "fill:#FFFFFF;stroke:#000000;stroke-opacity:0.6;stroke-width:2")
		c.Line(110, 140, 154, 140, ink(2))
	case "Sad":
		c.Path("M118,146 Q132,130 146,146", ink(3))
	case "ScreamOpen":
		c.Ellipse(faceX, 146, 14, 18, inkFill)
		c.Ellipse(faceX, 156, 9, 6, tongue)
	case "Serious":
		c.Line(118, 140, 146, 140, ink(3))
	case "Smile":
		c.Path("M112,134 Q132,166 152,134 Z", inkFill)
		c.Path("M118,136 L146,136 L144,142 L120,142 Z", white)
	case "Tongue":
		c.Path("M112,134 Q132,166 152,134 Z", inkFill)
		c.Ellipse(faceX, 150, 9, 7, tongue)
	case "Twinkle":
		c.Path("M120,138 Q132,146 144,138", ink(3))
	case "Vomit":
		c.Path("M114,136 Q132,160 150,136 Z", inkFill)
		c.Path("M120,146 Q132,150 144,146 L142,176 Q138,184 134,176 L132,160 L128,170 Q124,176 122,168 Z", fill("#88C553"))
	default:
		c.Path("M118,138 Q132,148 146,138", ink(3))
	}
}

// lid is a curve across an eye; a positive bow bends down.
func lid(x, y, bow int) string {
	return fmt.Sprintf("M%d,%d Q%d,%d %d,%d", x-8, y, x, y+bow, x+8, y)
}

func drawEyes(c *svg.SVG, name string) {
	pupil := func(x int) { c.Circle(x, eyeY, 6, inkFill) }
	wide := func(x, y, dy int) {
		c.Circle(x, y, 10, white)
		c.Circle(x, y+dy, 5, inkFill)
	}
	both := func(f func(x int)) {
		f(leftX)
		f(rightX)
	}

	switch name {
	case "Close":
		both(func(x int) { c.Path(lid(x, 102, 6), ink(3)) })
	case "Cry":
		both(pupil)
		c.Path("M104,108 Q100,122 104,124 Q108,122 104,108 Z", fill("#92D9FF"))
	case "Dizzy":
		both(func(x int) {
			c.Line(x-6, 94, x+6, 106, ink(3))
			c.Line(x-6, 106, x+6, 94, ink(3))
		})
	case "EyeRoll":
		both(func(x int) { wide(x, eyeY, -6) })
	case "Happy":
		both(func(x int) { c.Path(lid(x, 104, -10), ink(4)) })
	case "Hearts":
		both(func(x int) {
			c.Path(fmt.Sprintf("M%d,108 C%d,100 %d,90 %d,96 C%d,90 %d,100 %d,108 Z", x, x-10, x-10, x, x+10, x+10, x), fill("#FF5D5D"))
		})
	case "Side":
		both(func(x int) { c.Circle(x+4, eyeY, 6, inkFill) })
	case "Squint":
		both(func(x int) { c.Ellipse(x, eyeY, 7, 3, inkFill) })
	case "Surprised":
		both(func(x int) { wide(x, eyeY, 0) })
	case "Wink":
		pupil(leftX)
		c.Path(lid(rightX, 104, -8), ink(3))
	case "WinkWacky":
		c.Path(lid(leftX, 102, 6), ink(3))
		c.Circle(rightX, 98, 11, white)
		c.Circle(rightX, 98, 6, inkFill)
	default:
		both(pupil)
	}
}

type browShape struct {
	left, right string
	natural     bool
}

var brows = map[string]browShape{
	"Angry":                {"M96,80 L120,88", "M144,88 L168,80", false},
	"AngryNatural":         {"M96,80 L120,88", "M144,88 L168,80", true},
	"Default":              {"M96,86 Q108,78 120,84", "M144,84 Q156,78 168,86", false},
	"DefaultNatural":       {"M96,86 Q108,78 120,84", "M144,84 Q156,78 168,86", true},
	"FlatNatural":          {"M96,84 L120,84", "M144,84 L168,84", true},
	"RaisedExcited":        {"M96,80 Q108,68 120,76", "M144,76 Q156,68 168,80", false},
	"RaisedExcitedNatural": {"M96,80 Q108,68 120,76", "M144,76 Q156,68 168,80", true},
	"SadConcerned":         {"M96,86 Q110,84 120,78", "M144,78 Q154,84 168,86", false},
	"SadConcernedNatural":  {"M96,86 Q110,84 120,78", "M144,78 Q154,84 168,86", true},
	"UnibrowNatural":       {"M96,86 Q114,76 132,84 Q150,76 168,86", "", true},
	"UpDown":               {"M96,80 Q108,70 120,78", "M144,86 L168,86", false},
	"UpDownNatural":        {"M96,80 Q108,70 120,78", "M144,86 L168,86", true},
}

func drawEyebrows(c *svg.SVG, name string) {
	b, ok := brows[name]
	if !ok {
		b = brows["Default"]
	}
	style := ink(4)
	if b.natural {
		style = "fill:none;stroke:#000000;stroke-opacity:0.7;stroke-width:6;stroke-linecap:round"
	}
	c.Path(b.left, style)
	if b.right != "" {
		c.Path(b.right, style)
	}
}

func drawAccessories(c *svg.SVG, name string) {
	const (
		frame = "fill:#FFFFFF;fill-opacity:0.1;stroke:#252C2F;stroke-width:3"
		lens  = "fill:#000000;fill-opacity:0.75"
	)
	bridge := func() { c.Path("M126,98 Q132,92 138,98", stroke("#252C2F", 3)) }
	arms := func() {
		c.Line(88, 96, 80, 94, stroke("#252C2F", 3))
		c.Line(176, 96, 184, 94, stroke("#252C2F", 3))
	}

	switch name {
	case "Kurt":
		c.Ellipse(106, eyeY, 20, 16, "fill:#FFFFFF;fill-opacity:0.3;stroke:#252C2F;stroke-width:3")
		c.Ellipse(158, eyeY, 20, 16, "fill:#FFFFFF;fill-opacity:0.3;stroke:#252C2F;stroke-width:3")
		bridge()
	case "Prescription01":
		c.Roundrect(88, 88, 38, 26, 6, 6, frame)
		c.Roundrect(138, 88, 38, 26, 6, 6, frame)
		bridge()
		arms()
	case "Prescription02":
		c.Rect(88, 88, 38, 24, "fill:#FFFFFF;fill-opacity:0.1;stroke:#252C2F;stroke-width:5")
		c.Rect(138, 88, 38, 24, "fill:#FFFFFF;fill-opacity:0.1;stroke:#252C2F;stroke-width:5")
		bridge()
		arms()
	case "Round":
		c.Circle(leftX, eyeY, 16, frame)
		c.Circle(rightX, eyeY, 16, frame)
		bridge()
		arms()
	case "Sunglasses":
		c.Ellipse(leftX, 102, 18, 14, lens)
		c.Ellipse(rightX, 102, 18, 14, lens)
		bridge()
		arms()
	case "Wayfarers":
		c.Polygon([]int{86, 130, 124, 92}, []int{90, 90, 114, 114}, lens)
		c.Polygon([]int{134, 178, 172, 140}, []int{90, 90, 114, 114}, lens)
		bridge()
		arms()
	}
}

func longHairBack(length int) string {
	return fmt.Sprintf("M80,100 C70,20 194,20 184,100 L196,%d C176,%d 88,%d 68,%d Z", length, length+8, length+8, length)
}

const (
	hairCapFlat   = "M80,104 C74,18 190,18 184,104 C180,80 170,64 150,62 L114,62 C94,64 84,80 80,104 Z"
	hairCapRound  = "M78,108 C70,14 194,14 186,108 C182,78 160,58 132,58 C104,58 82,78 78,108 Z"
	hairCapWaved  = "M80,104 C74,18 190,18 184,104 Q178,74 166,66 Q156,74 146,62 Q136,72 126,60 Q114,72 104,62 Q88,72 80,104 Z"
	hairCaesar    = "M82,92 C78,24 186,24 182,92 L178,66 L86,66 Z"
	hairSweep     = "M80,110 C74,18 190,18 184,110 C176,70 150,56 132,58 C120,70 96,80 80,110 Z"
	hairCenter    = "M80,112 C74,18 190,18 184,112 C178,74 146,60 132,64 C118,60 86,74 80,112 Z"
	hairBangs     = "M80,104 C74,18 190,18 184,104 L184,80 L80,80 Z"
	hairFroFringe = "M84,84 C90,56 174,56 180,84 C168,66 96,66 84,84 Z"
	beanie        = "M80,84 C74,8 190,8 184,84 Z"
)

// drawTopBack paints the parts of hair and headwear that sit behind the head.
func drawTopBack(c *svg.SVG, a Avatar) {
	hair := fill(a.HairColor)
	switch a.Top {
	case "LongHairStraight", "LongHairStraight2", "LongHairStraightStrand":
		c.Path(longHairBack(240), hair)
	case "LongHairBob", "LongHairMiaWallace":
		c.Path(longHairBack(170), hair)
	case "LongHairNotTooLong", "LongHairFrida":
		c.Path(longHairBack(206), hair)
	case "LongHairDreads":
		c.Path(longHairBack(230), hair)
		for x := 74; x <= 190; x += 116 {
			for dx := 0; dx <= 12; dx += 6 {
				c.Line(x+dx-6, 120, x+dx-6, 236, stroke(a.HairColor, 6))
			}
		}
	case "LongHairBigHair":
		c.Path("M60,100 C40,0 224,0 204,100 L220,230 C180,250 84,250 44,230 Z", hair)
	case "LongHairCurly":
		for y := 80; y <= 220; y += 22 {
			c.Circle(74, y, 18, hair)
			c.Circle(190, y, 18, hair)
		}
		c.Path(hairCapRound, hair)
	case "LongHairCurvy":
		c.Path("M80,100 C70,20 194,20 184,100 Q204,130 188,160 Q204,190 190,224 L74,224 Q60,190 76,160 Q60,130 80,100 Z", hair)
	case "LongHairFro", "LongHairFroBand":
		c.Circle(faceX, 92, 86, hair)
	case "LongHairShavedSides":
		c.Path("M132,40 C170,30 196,60 192,120 L196,210 L150,210 Z", hair)
	case "ShortHairShaggyMullet":
		c.Path("M78,100 L74,168 C90,176 174,176 190,168 L186,100 Z", hair)
	case "Hijab":
		c.Path("M66,110 C60,20 204,20 198,110 L206,214 C176,232 88,232 58,214 Z", fill(a.TopColor))
	}
}

// drawTopFront paints hair and headwear over the face.
func drawTopFront(c *svg.SVG, a Avatar) {
	hair := fill(a.HairColor)
	hat := fill(a.TopColor)

	switch a.Top {
	case "NoHair":
	case "Eyepatch":
		c.Line(78, 76, 186, 118, stroke("#28354B", 4))
		c.Ellipse(leftX, eyeY, 14, 12, fill("#28354B"))
	case "Hat":
		c.Path("M86,70 C86,20 178,20 178,70 Z", hat)
		c.Rect(86, 58, 92, 8, shade)
		c.Roundrect(60, 64, 144, 12, 6, 6, hat)
	case "Hijab":
		c.Path("M66,110 C60,20 204,20 198,110 L184,118 C186,70 164,54 132,54 C100,54 78,70 80,118 Z", hat)
		c.Path("M80,118 C84,160 104,178 132,178 C160,178 180,160 184,118 L196,200 C170,214 94,214 68,200 Z", hat)
		c.Path("M84,132 C92,164 112,178 132,180", "fill:none;stroke:#000000;stroke-opacity:0.16;stroke-width:3")
	case "Turban":
		c.Path("M74,96 C62,10 202,10 190,96 C176,70 156,60 132,64 C108,60 88,70 74,96 Z", hat)
		c.Path("M90,50 Q132,86 176,46", "fill:none;stroke:#000000;stroke-opacity:0.16;stroke-width:3")
		c.Path("M84,70 Q132,40 180,70", "fill:none;stroke:#000000;stroke-opacity:0.16;stroke-width:3")
	case "WinterHat1":
		c.Path(beanie, hat)
		drawHatCuff(c, hat)
		c.Circle(faceX, 18, 14, white)
	case "WinterHat2":
		c.Path(beanie, hat)
		c.Path("M78,84 L74,140 L92,134 L92,84 Z", hat)
		c.Path("M186,84 L190,140 L172,134 L172,84 Z", hat)
		c.Line(83, 138, 83, 170, stroke("#F4F4F4", 3))
		c.Line(181, 138, 181, 170, stroke("#F4F4F4", 3))
		drawHatCuff(c, hat)
	case "WinterHat3":
		c.Path("M80,84 C70,0 230,-10 184,84 Z", hat)
		drawHatCuff(c, hat)
	case "WinterHat4":
		c.Polygon([]int{84, 92, 112}, []int{52, 14, 40}, hat)
		c.Polygon([]int{180, 172, 152}, []int{52, 14, 40}, hat)
		c.Path(beanie, hat)
		drawHatCuff(c, hat)
	case "LongHairBun":
		c.Circle(faceX, 30, 20, hair)
		c.Path(hairCapRound, hair)
	case "LongHairCurly":
		for x := 92; x <= 172; x += 16 {
			c.Circle(x, 56, 12, hair)
		}
	case "LongHairFro":
		c.Path(hairFroFringe, hair)
	case "LongHairFroBand":
		c.Path(hairFroFringe, hair)
		c.Path("M62,80 C80,56 184,56 202,80 L198,92 C180,70 84,70 66,92 Z", hat)
	case "LongHairFrida":
		c.Path(hairCenter, hair)
		petals := []string{"#FF5C5C", "#FFDEB5", "#A7FFC4", "#FF488E"}
		for i, p := range [][2]int{{96, 46}, {118, 36}, {146, 36}, {168, 46}} {
			c.Circle(p[0], p[1], 9, fill(petals[i]))
			c.Circle(p[0], p[1], 3, fill("#FFFFB1"))
		}
	case "LongHairMiaWallace":
		c.Path(hairBangs, hair)
	case "LongHairStraight2", "LongHairBob":
		c.Path(hairCenter, hair)
	case "LongHairStraightStrand":
		c.Path(hairSweep, hair)
		c.Path("M176,70 C196,120 186,180 192,230 L182,230 C176,180 184,120 168,80 Z", hair)
	case "LongHairShavedSides":
		c.Path("M80,88 C90,30 190,20 188,120 C180,80 150,60 100,72 Z", hair)
		c.Path("M80,112 C78,88 84,70 96,60 L98,96 Z", shade)
	case "LongHairStraight", "LongHairNotTooLong", "LongHairBigHair", "LongHairCurvy":
		c.Path(hairSweep, hair)
	case "LongHairDreads", "ShortHairDreads01", "ShortHairDreads02":
		c.Path(hairCapRound, hair)
		length := 34
		if a.Top == "ShortHairDreads02" {
			length = 56
		}
		if a.Top != "LongHairDreads" {
			for x := 86; x <= 170; x += 12 {
				c.Roundrect(x, 60, 8, length, 4, 4, hair)
			}
		}
	case "ShortHairFrizzle":
		c.Path(hairCapRound, hair)
		for x := 88; x <= 176; x += 11 {
			c.Circle(x, 62, 6, hair)
		}
	case "ShortHairShaggyMullet", "ShortHairShortWaved":
		c.Path(hairCapWaved, hair)
	case "ShortHairShortCurly":
		c.Path(hairCapRound, hair)
		for x := 88; x <= 176; x += 14 {
			c.Circle(x, 52, 12, hair)
			c.Circle(x+7, 64, 10, hair)
		}
	case "ShortHairShortRound":
		c.Path(hairCapRound, hair)
	case "ShortHairSides":
		c.Path("M80,112 C78,88 82,74 90,66 L94,96 Z", hair)
		c.Path("M184,112 C186,88 182,74 174,66 L170,96 Z", hair)
	case "ShortHairTheCaesar":
		c.Path(hairCaesar, hair)
	case "ShortHairTheCaesarSidePart":
		c.Path(hairCaesar, hair)
		c.Line(110, 34, 106, 66, "fill:none;stroke:#000000;stroke-opacity:0.2;stroke-width:3")
	default:
		c.Path(hairCapFlat, hair)
	}
}

func drawHatCuff(c *svg.SVG, hat string) {
	c.Roundrect(74, 74, 116, 20, 8, 8, hat)
	c.Roundrect(74, 74, 116, 20, 8, 8, shade)
}
