package langdetect

import "testing"

func TestDetectSkipsShortSamples(t *testing.T) {
	t.Parallel()

	if code := DetectISO6391("  hi  "); code != "" {
		t.Fatalf("expected short sample to be skipped, got %q", code)
	}
	if _, ok := Detect("12345 !!!"); ok {
		t.Fatalf("expected sample without letters to be skipped")
	}
}

func TestHasEnoughLetters(t *testing.T) {
	t.Parallel()

	if hasEnoughLetters("abc 12") {
		t.Fatalf("did not expect three letters to be enough")
	}
	if !hasEnoughLetters("こんにちは世界") {
		t.Fatalf("expected CJK letters to count")
	}
}
