package language

import (
	"errors"
	"testing"
)

func TestParseCanonicalizes(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"en":      "en",
		" EN ":    "en",
		"zh-Hant": "zh-hant",
		"zh_Hant": "zh-hant",
		"pt-BR":   "pt-br",
	}
	for raw, want := range cases {
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if got.Code() != want {
			t.Fatalf("Parse(%q) = %q, want %q", raw, got.Code(), want)
		}
	}
}

func TestParseAuto(t *testing.T) {
	t.Parallel()

	got, err := Parse("AUTO")
	if err != nil {
		t.Fatalf("Parse(AUTO): %v", err)
	}
	if got != Auto || !got.IsAuto() {
		t.Fatalf("expected Auto, got %q", got.Code())
	}
	if got.Base() != "" {
		t.Fatalf("expected empty base for Auto, got %q", got.Base())
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	if _, err := Parse("  "); !errors.Is(err, ErrEmptyTag) {
		t.Fatalf("expected ErrEmptyTag, got %v", err)
	}
	if _, err := Parse("not a tag"); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
	if _, err := Parse("und"); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected und to be rejected, got %v", err)
	}
}

func TestTagEqualityByCode(t *testing.T) {
	t.Parallel()

	a := MustParse("ja")
	b := MustParse(" JA ")
	if a != b {
		t.Fatalf("expected equal tags, got %q and %q", a.Code(), b.Code())
	}

	seen := map[Tag]int{a: 1}
	if seen[b] != 1 {
		t.Fatalf("expected tags to hash equally")
	}
	if MustParse("zh-Hant").Base() != "zh" {
		t.Fatalf("unexpected base subtag")
	}
}

func TestTagTextRoundTrip(t *testing.T) {
	t.Parallel()

	var tag Tag
	if err := tag.UnmarshalText([]byte("fr")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	text, err := tag.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(text) != "fr" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if got := Normalize(" EN_us "); got != "en-us" {
		t.Fatalf("unexpected normalized tag: %q", got)
	}
	if got := Normalize("es-419"); got != "es-419" {
		t.Fatalf("expected region digits to survive, got %q", got)
	}
	if got := Normalize("auto"); got != "" {
		t.Fatalf("expected auto to normalize to empty string, got %q", got)
	}
	if got := Normalize("en_!!"); got != "" {
		t.Fatalf("expected invalid tag to normalize to empty string, got %q", got)
	}
}
