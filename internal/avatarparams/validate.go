package avatarparams

import "github.com/keithlinneman/avatars-web/internal/avataaars"

// OptionSet is a fixed set of permitted categorical values.
// *avataaars.Catalog satisfies it.
type OptionSet interface {
	Contains(v string) bool
}

// ValidateOption accepts raw unchanged when it is a member of set. There is
// no trimming or case folding.
func ValidateOption(set OptionSet, raw string) Result[string] {
	if raw == "" {
		return Result[string]{}
	}
	if !set.Contains(raw) {
		return reject[string]()
	}
	return accept(raw)
}

// ValidateColor accepts raw when its first six characters are hex digits
// and returns it with a "#" prefix. Anything after the sixth character is
// kept as-is; the renderer's Clean step cuts it off before drawing.
func ValidateColor(raw string) Result[string] {
	if raw == "" {
		return Result[string]{}
	}
	if len(raw) < 6 || !avataaars.IsHex6(raw[:6]) {
		return reject[string]()
	}
	return accept("#" + raw)
}

// ValidateColorStrict accepts exactly six hex digits and nothing else.
func ValidateColorStrict(raw string) Result[string] {
	if raw == "" {
		return Result[string]{}
	}
	if !avataaars.IsHex6(raw) {
		return reject[string]()
	}
	return accept("#" + raw)
}

// ParseBool reads a boolean-ish flag: only "true" is true, any other
// non-empty value is false.
func ParseBool(raw string) Result[bool] {
	if raw == "" {
		return Result[bool]{}
	}
	return accept(raw == "true")
}
