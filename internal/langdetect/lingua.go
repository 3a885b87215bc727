package langdetect

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/Tetsuya81/QuickLang/internal/language"
)

// MinLetters is the shortest sample, in letters, that detection is attempted on.
const MinLetters = 6

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect guesses the language of text. ok is false for short samples or when lingua is undecided.
func Detect(text string) (language.Tag, bool) {
	code := DetectISO6391(text)
	if code == "" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Tag{}, false
	}
	return tag, true
}

func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if !hasEnoughLetters(sample) {
		return ""
	}

	detected, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func hasEnoughLetters(sample string) bool {
	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
			if letterCount >= MinLetters {
				return true
			}
		}
	}
	return false
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build()
	})
	return detector
}
