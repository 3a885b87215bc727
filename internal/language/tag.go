package language

import (
	"errors"
	"fmt"
	"strings"

	xlanguage "golang.org/x/text/language"
)

// AutoCode is the wire value of the AutoDetect source language.
const AutoCode = "auto"

var (
	// ErrEmptyTag is returned when a blank language value is parsed.
	ErrEmptyTag = errors.New("language tag is required")
	// ErrInvalidTag is returned for values that are not well-formed BCP-47 tags.
	ErrInvalidTag = errors.New("invalid language tag")
)

// Tag identifies a natural language by its normalized BCP-47 code.
// The zero value is not a language; use Parse, MustParse or Auto.
type Tag struct {
	code string
}

// Auto means "infer the source language from the input text".
// It is only meaningful as a translation source.
var Auto = Tag{code: AutoCode}

// Parse canonicalizes raw into a Tag. "auto" (any case) yields Auto.
func Parse(raw string) (Tag, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Tag{}, ErrEmptyTag
	}
	if strings.EqualFold(trimmed, AutoCode) {
		return Auto, nil
	}

	parsed, err := xlanguage.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return Tag{}, fmt.Errorf("%w %q: %v", ErrInvalidTag, raw, err)
	}
	if parsed == xlanguage.Und {
		return Tag{}, fmt.Errorf("%w %q: undetermined language", ErrInvalidTag, raw)
	}

	code := normalizeSubtags(parsed.String())
	if code == "" {
		return Tag{}, fmt.Errorf("%w %q", ErrInvalidTag, raw)
	}
	return Tag{code: code}, nil
}

// MustParse is Parse for static tables. It panics on malformed input.
func MustParse(raw string) Tag {
	tag, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return tag
}

// Code returns the normalized code, for example "en" or "zh-hant".
func (t Tag) Code() string {
	return t.code
}

// Base returns the primary language subtag ("zh" for "zh-hant").
func (t Tag) Base() string {
	if t.IsAuto() {
		return ""
	}
	if dash := strings.IndexByte(t.code, '-'); dash >= 0 {
		return t.code[:dash]
	}
	return t.code
}

func (t Tag) IsAuto() bool {
	return t.code == AutoCode
}

func (t Tag) IsZero() bool {
	return t.code == ""
}

func (t Tag) String() string {
	if t.IsZero() {
		return "und"
	}
	return t.code
}

func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.code), nil
}

func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Normalize returns the canonical code for raw, or "" when raw is blank, Auto or malformed.
func Normalize(raw string) string {
	tag, err := Parse(raw)
	if err != nil || tag.IsAuto() {
		return ""
	}
	return tag.code
}

// normalizeSubtags lowercases a tag and drops empty or non-alphanumeric subtags.
func normalizeSubtags(raw string) string {
	parts := strings.Split(strings.ToLower(raw), "-")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		for _, r := range part {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return ""
			}
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "-")
}
