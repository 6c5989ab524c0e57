package avatarparams

import (
	"net/url"
	"slices"
	"testing"

	"github.com/keithlinneman/avatars-web/internal/avataaars"
)

type setOf []string

func (s setOf) Contains(v string) bool { return slices.Contains(s, v) }

// ValidateOption

func TestValidateOption_Member(t *testing.T) {
	r := ValidateOption(setOf{"a", "b"}, "b")
	if v, ok := r.Get(); !ok || v != "b" {
		t.Fatalf("got %+v, want Accepted(b)", r)
	}
}

func TestValidateOption_NonMember(t *testing.T) {
	r := ValidateOption(setOf{"a", "b"}, "c")
	if r.Status != Rejected || r.Value != "" {
		t.Fatalf("got %+v, want Rejected", r)
	}
}

func TestValidateOption_EmptyIsOmitted(t *testing.T) {
	for _, set := range []OptionSet{setOf{}, setOf{""}, avataaars.Tops} {
		if r := ValidateOption(set, ""); r.Status != Omitted {
			t.Fatalf("ValidateOption(%v, \"\") = %v, want omitted", set, r.Status)
		}
	}
}

func TestValidateOption_NoNormalization(t *testing.T) {
	for _, raw := range []string{" Hat", "Hat ", "hat", "HAT"} {
		if r := ValidateOption(avataaars.Tops, raw); r.Ok() {
			t.Errorf("ValidateOption(%q) accepted; want exact match only", raw)
		}
	}
}

// ValidateColor

func TestValidateColor(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		val  string
	}{
		{"", Omitted, ""},
		{"abcdef", Accepted, "#abcdef"},
		{"ABCDEF", Accepted, "#ABCDEF"},
		{"012345", Accepted, "#012345"},
		{"abcdefZZZ", Accepted, "#abcdefZZZ"},
		{"abcde", Rejected, ""},
		{"abcdeg", Rejected, ""},
		{"#abcdef", Rejected, ""},
		{"ghijkl", Rejected, ""},
	}
	for _, c := range cases {
		r := ValidateColor(c.in)
		if r.Status != c.want || r.Value != c.val {
			t.Errorf("ValidateColor(%q) = %v/%q, want %v/%q", c.in, r.Status, r.Value, c.want, c.val)
		}
	}
}

func TestValidateColorStrict(t *testing.T) {
	if r := ValidateColorStrict("abcdef"); r.Value != "#abcdef" {
		t.Fatalf("strict abcdef = %+v", r)
	}
	if r := ValidateColorStrict("abcdefZZ"); r.Status != Rejected {
		t.Fatalf("strict should reject trailing chars, got %+v", r)
	}
	if r := ValidateColorStrict(""); r.Status != Omitted {
		t.Fatalf("strict empty = %v", r.Status)
	}
}

// ParseBool

func TestParseBool(t *testing.T) {
	if r := ParseBool(""); r.Status != Omitted {
		t.Fatalf("empty = %v", r.Status)
	}
	if v, ok := ParseBool("true").Get(); !ok || !v {
		t.Fatal("true should be accepted as true")
	}
	for _, raw := range []string{"false", "1", "TRUE", "yes"} {
		if v, ok := ParseBool(raw).Get(); !ok || v {
			t.Errorf("ParseBool(%q) = %v/%v, want accepted false", raw, v, ok)
		}
	}
}

func TestStatusString(t *testing.T) {
	if Omitted.String() != "omitted" || Rejected.String() != "rejected" || Accepted.String() != "accepted" {
		t.Fatal("unexpected status strings")
	}
	if Status(99).String() != "unknown" {
		t.Fatal("out of range status should be unknown")
	}
}

// Parse

func TestParse_MixedInput(t *testing.T) {
	q := url.Values{
		"top":       {"NotARealStyle"},
		"clothes":   {"Hoodie"},
		"skinColor": {"abcdef"},
		"hairColor": {"xyz"},
		"isCircle":  {"true"},
		"unknown":   {"ignored"},
	}
	req := Parse(q, Policy{})

	if req.Top.Status != Rejected {
		t.Fatalf("Top = %v, want rejected", req.Top.Status)
	}
	if req.Clothes.Value != "Hoodie" {
		t.Fatalf("Clothes = %+v", req.Clothes)
	}
	if req.SkinColor.Value != "#abcdef" {
		t.Fatalf("SkinColor = %+v", req.SkinColor)
	}
	if req.Eyes.Status != Omitted {
		t.Fatalf("Eyes = %v, want omitted", req.Eyes.Status)
	}

	got := req.Rejected()
	want := []string{"hairColor", "top"}
	if !slices.Equal(got, want) {
		t.Fatalf("Rejected() = %v, want %v", got, want)
	}

	p := req.Props()
	if p.Top != "" || p.HairColor != "" || p.Clothes != "Hoodie" {
		t.Fatalf("Props = %+v", p)
	}
	if p.IsCircle == nil || !*p.IsCircle {
		t.Fatal("IsCircle should be set to true")
	}
}

func TestParse_EmptyQuery(t *testing.T) {
	req := Parse(url.Values{}, Policy{})
	if len(req.Rejected()) != 0 {
		t.Fatalf("Rejected() = %v, want none", req.Rejected())
	}
	p := req.Props()
	if p.IsCircle != nil || p != (avataaars.Props{}) {
		t.Fatalf("Props = %+v, want zero", p)
	}
}

func TestParse_StrictPolicy(t *testing.T) {
	q := url.Values{"skinColor": {"abcdef00"}}
	if r := Parse(q, Policy{}).SkinColor; !r.Ok() {
		t.Fatal("lenient policy should accept six digit prefix")
	}
	if r := Parse(q, Policy{StrictColors: true}).SkinColor; r.Status != Rejected {
		t.Fatal("strict policy should reject trailing characters")
	}
}

func TestParse_CleanedConfigIsStable(t *testing.T) {
	// a cleaned config re-encoded as a query must parse to the same props
	first := avataaars.Clean(Parse(url.Values{
		"top":          {"Hat"},
		"topColor":     {"123abcTRAILING"},
		"eyes":         {"Wink"},
		"mouth":        {"NotAMouth"},
		"clothesColor": {"zzzzzz"},
		"isCircle":     {"false"},
	}, Policy{}).Props())

	second := avataaars.Clean(Parse(first.Query(), Policy{}).Props())
	if first.Query().Encode() != second.Query().Encode() {
		t.Fatalf("not idempotent:\n first  %s\n second %s", first.Query().Encode(), second.Query().Encode())
	}
	if len(Parse(first.Query(), Policy{StrictColors: true}).Rejected()) != 0 {
		t.Fatal("cleaned config should pass strict validation")
	}
}
