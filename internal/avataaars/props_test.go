package avataaars

import (
	"net/url"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

// Clean

func TestClean_DropsUnknownOptions(t *testing.T) {
	got := Clean(Props{Top: "NotAHat", Eyes: "Happy", Mouth: "smile"})
	if got.Top != "" {
		t.Fatalf("Top = %q, want empty", got.Top)
	}
	if got.Eyes != "Happy" {
		t.Fatalf("Eyes = %q, want Happy", got.Eyes)
	}
	if got.Mouth != "" {
		t.Fatalf("Mouth = %q, want empty (membership is case-sensitive)", got.Mouth)
	}
}

func TestClean_ColorsTruncatedToSevenChars(t *testing.T) {
	got := Clean(Props{SkinColor: "#abcdefZZ", HairColor: "#12345", TopColor: "123456"})
	if got.SkinColor != "#abcdef" {
		t.Fatalf("SkinColor = %q, want #abcdef", got.SkinColor)
	}
	if got.HairColor != "" {
		t.Fatalf("HairColor = %q, want empty", got.HairColor)
	}
	if got.TopColor != "" {
		t.Fatalf("TopColor = %q, want empty (missing #)", got.TopColor)
	}
}

func TestClean_Idempotent(t *testing.T) {
	in := Props{
		IsCircle:    boolPtr(true),
		CircleColor: "#65C9FFxyz",
		SkinColor:   "nope",
		Clothes:     "Hoodie",
		Top:         "garbage",
		Accessories: "Round",
	}
	once := Clean(in)
	twice := Clean(once)
	if once.CircleColor != twice.CircleColor || once.Clothes != twice.Clothes ||
		once.Top != twice.Top || once.Accessories != twice.Accessories || *once.IsCircle != *twice.IsCircle {
		t.Fatalf("Clean not idempotent: %+v vs %+v", once, twice)
	}
}

func TestClean_CopiesIsCircle(t *testing.T) {
	v := true
	in := Props{IsCircle: &v}
	out := Clean(in)
	v = false
	if out.IsCircle == nil || !*out.IsCircle {
		t.Fatal("Clean should copy IsCircle, not alias it")
	}
}

// Factory

func TestFactory_EmptyPropsYieldsDefaults(t *testing.T) {
	a := Factory(Props{})
	if a.IsCircle {
		t.Fatal("IsCircle should default to false")
	}
	if a.SkinColor != DefaultSkinColor || a.CircleColor != DefaultCircleColor {
		t.Fatalf("colors = %q/%q, want defaults", a.SkinColor, a.CircleColor)
	}
	if a.Top != Tops.Default() || a.Eyes != Eyes.Default() || a.Mouth != Mouths.Default() {
		t.Fatalf("options not defaulted: %+v", a)
	}
}

func TestFactory_KeepsSetValues(t *testing.T) {
	a := Factory(Props{IsCircle: boolPtr(true), Top: "Hat", HairColor: "#000000"})
	if !a.IsCircle || a.Top != "Hat" || a.HairColor != "#000000" {
		t.Fatalf("set values lost: %+v", a)
	}
}

func TestFactory_OutputRoundTripsThroughClean(t *testing.T) {
	a := Factory(Clean(Props{Top: "bogus", SkinColor: "#zzzzzz"}))
	if b := Factory(Clean(a.Props())); b != a {
		t.Fatalf("Factory(Clean(a.Props())) = %+v, want %+v", b, a)
	}
}

// Query

func TestQuery_OmitsUnsetAndStripsHash(t *testing.T) {
	q := Props{SkinColor: "#EDB98A", Top: "Hat", IsCircle: boolPtr(false)}.Query()
	want := url.Values{
		ParamSkinColor: {"EDB98A"},
		ParamTop:       {"Hat"},
		ParamIsCircle:  {"false"},
	}
	if q.Encode() != want.Encode() {
		t.Fatalf("Query = %q, want %q", q.Encode(), want.Encode())
	}
}

// IsHex6

func TestIsHex6(t *testing.T) {
	cases := map[string]bool{
		"abcdef":  true,
		"ABCDEF":  true,
		"012345":  true,
		"abcde":   false,
		"abcdefa": false,
		"abcdeg":  false,
		"":        false,
	}
	for in, want := range cases {
		if got := IsHex6(in); got != want {
			t.Errorf("IsHex6(%q) = %v, want %v", in, got, want)
		}
	}
}

// Catalogs

func TestCatalogs_DefaultsAreMembers(t *testing.T) {
	for _, c := range Catalogs() {
		if !c.Contains(c.Default()) {
			t.Errorf("catalog %s default %q not a member", c.Name(), c.Default())
		}
		if c.Len() == 0 {
			t.Errorf("catalog %s is empty", c.Name())
		}
	}
}

func TestCatalog_ValuesIsCopy(t *testing.T) {
	v := Tops.Values()
	v[0] = "mutated"
	if Tops.Contains("mutated") || Tops.Values()[0] == "mutated" {
		t.Fatal("Values should return a copy")
	}
}

func TestNewCatalog_PanicsOnMissingDefault(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing default")
		}
	}()
	newCatalog("x", "missing", "a", "b")
}

func TestPalettes_ColorsAreClean(t *testing.T) {
	for name, p := range Palettes() {
		for _, s := range p {
			if cleanColor(s.Hex) != s.Hex {
				t.Errorf("palette %s swatch %s has invalid hex %q", name, s.Name, s.Hex)
			}
		}
	}
}
