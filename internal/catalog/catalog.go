// Package catalog holds the fixed set of languages QuickLang offers in its pickers.
package catalog

import (
	"errors"
	"fmt"

	"github.com/Tetsuya81/QuickLang/internal/language"
)

var ErrUnknownLanguage = errors.New("unknown language")

// LanguageOption is the JSON shape of one picker entry.
type LanguageOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

// Entry describes one catalog language.
type Entry struct {
	Tag    language.Tag
	Label  string
	Native string
}

type Catalog struct {
	entries []Entry
	byTag   map[language.Tag]Entry
}

var autoEntry = Entry{Tag: language.Auto, Label: "Auto Detect"}

var defaultEntries = []Entry{
	{Tag: language.MustParse("en"), Label: "English", Native: "English"},
	{Tag: language.MustParse("ja"), Label: "Japanese", Native: "日本語"},
	{Tag: language.MustParse("es"), Label: "Spanish", Native: "Español"},
	{Tag: language.MustParse("fr"), Label: "French", Native: "Français"},
	{Tag: language.MustParse("de"), Label: "German", Native: "Deutsch"},
	{Tag: language.MustParse("zh"), Label: "Chinese (Simplified)", Native: "简体中文"},
	{Tag: language.MustParse("zh-Hant"), Label: "Chinese (Traditional)", Native: "繁體中文"},
	{Tag: language.MustParse("ko"), Label: "Korean", Native: "한국어"},
	{Tag: language.MustParse("ru"), Label: "Russian", Native: "Русский"},
	{Tag: language.MustParse("ar"), Label: "Arabic", Native: "العربية"},
	{Tag: language.MustParse("pt"), Label: "Portuguese", Native: "Português"},
	{Tag: language.MustParse("it"), Label: "Italian", Native: "Italiano"},
	{Tag: language.MustParse("tr"), Label: "Turkish", Native: "Türkçe"},
	{Tag: language.MustParse("th"), Label: "Thai", Native: "ไทย"},
	{Tag: language.MustParse("vi"), Label: "Vietnamese", Native: "Tiếng Việt"},
	{Tag: language.MustParse("id"), Label: "Indonesian", Native: "Bahasa Indonesia"},
	{Tag: language.MustParse("pl"), Label: "Polish", Native: "Polski"},
	{Tag: language.MustParse("uk"), Label: "Ukrainian", Native: "Українська"},
	{Tag: language.MustParse("hi"), Label: "Hindi", Native: "हिन्दी"},
}

var defaultCatalog = New(defaultEntries)

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog
}

// New builds a catalog from entries in picker order. Auto entries and duplicates are dropped;
// Auto is always offered first as a source.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		byTag:   make(map[language.Tag]Entry, len(entries)+1),
	}
	c.byTag[language.Auto] = autoEntry

	for _, entry := range entries {
		if entry.Tag.IsZero() || entry.Tag.IsAuto() {
			continue
		}
		if _, exists := c.byTag[entry.Tag]; exists {
			continue
		}
		if entry.Label == "" {
			entry.Label = entry.Tag.Code()
		}
		c.entries = append(c.entries, entry)
		c.byTag[entry.Tag] = entry
	}
	return c
}

// ListSourceLanguages returns Auto followed by every target language.
func (c *Catalog) ListSourceLanguages() []language.Tag {
	tags := make([]language.Tag, 0, len(c.entries)+1)
	tags = append(tags, language.Auto)
	return append(tags, c.ListTargetLanguages()...)
}

func (c *Catalog) ListTargetLanguages() []language.Tag {
	tags := make([]language.Tag, 0, len(c.entries))
	for _, entry := range c.entries {
		tags = append(tags, entry.Tag)
	}
	return tags
}

func (c *Catalog) Contains(tag language.Tag) bool {
	_, ok := c.byTag[tag]
	return ok
}

// DisplayName returns the English label for tag.
func (c *Catalog) DisplayName(tag language.Tag) (string, error) {
	entry, err := c.entry(tag)
	if err != nil {
		return "", err
	}
	return entry.Label, nil
}

// NativeName returns the label written in the language itself, falling back to the English label.
func (c *Catalog) NativeName(tag language.Tag) (string, error) {
	entry, err := c.entry(tag)
	if err != nil {
		return "", err
	}
	if entry.Native == "" {
		return entry.Label, nil
	}
	return entry.Native, nil
}

// Lookup parses raw and checks that the result is in the catalog.
func (c *Catalog) Lookup(raw string) (language.Tag, error) {
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Tag{}, fmt.Errorf("%w: %v", ErrUnknownLanguage, err)
	}
	if !c.Contains(tag) {
		return language.Tag{}, fmt.Errorf("%w: %s", ErrUnknownLanguage, tag.Code())
	}
	return tag, nil
}

func (c *Catalog) SourceOptions() []LanguageOption {
	return c.options(c.ListSourceLanguages())
}

func (c *Catalog) TargetOptions() []LanguageOption {
	return c.options(c.ListTargetLanguages())
}

func (c *Catalog) options(tags []language.Tag) []LanguageOption {
	options := make([]LanguageOption, 0, len(tags))
	for _, tag := range tags {
		entry := c.byTag[tag]
		options = append(options, LanguageOption{
			Code:   tag.Code(),
			Label:  entry.Label,
			Native: entry.Native,
		})
	}
	return options
}

func (c *Catalog) entry(tag language.Tag) (Entry, error) {
	entry, ok := c.byTag[tag]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownLanguage, tag)
	}
	return entry, nil
}
