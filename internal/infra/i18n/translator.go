package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator holds the message catalog for one document language.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<langCode>.yaml from the given filesystem.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}

	return &Translator{lang: langCode, translations: translations}, nil
}

// Bundle keeps one Translator per supported language and falls back to the
// default language for codes it has never seen.
type Bundle struct {
	defaultLang string
	translators map[string]*Translator
}

func NewBundle(fsys fs.FS, defaultLang string, langs ...string) (*Bundle, error) {
	b := &Bundle{defaultLang: defaultLang, translators: make(map[string]*Translator)}
	for _, lang := range append([]string{defaultLang}, langs...) {
		if _, ok := b.translators[lang]; ok {
			continue
		}
		t, err := NewTranslator(fsys, lang)
		if err != nil {
			return nil, err
		}
		b.translators[lang] = t
	}
	return b, nil
}

// For returns the translator for lang, or the default-language translator.
func (b *Bundle) For(lang string) *Translator {
	if t, ok := b.translators[lang]; ok {
		return t
	}
	return b.translators[b.defaultLang]
}

// T resolves key, formatting args into the message. Unknown keys come back
// verbatim so a missing translation never breaks a flow.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Lang() string {
	return t.lang
}
