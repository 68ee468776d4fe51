//go:build !integration

package i18n

import (
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"locales/nl.yaml": {Data: []byte("greeting: \"Hallo, %s!\"\nplain: \"Tekst\"\n")},
		"locales/ar.yaml": {Data: []byte("greeting: \"مرحبا %s\"\n")},
	}
}

func TestTranslator_T(t *testing.T) {
	tr, err := NewTranslator(testFS(), "nl")
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	if got := tr.T("plain"); got != "Tekst" {
		t.Errorf("plain key: got %q", got)
	}
	if got := tr.T("greeting", "Anna"); got != "Hallo, Anna!" {
		t.Errorf("formatted key: got %q", got)
	}
	if got := tr.T("missing_key"); got != "missing_key" {
		t.Errorf("missing key should echo: got %q", got)
	}
}

func TestTranslator_MissingLocale(t *testing.T) {
	if _, err := NewTranslator(testFS(), "fr"); err == nil {
		t.Fatal("expected error for unknown locale file")
	}
}

func TestBundle_Fallback(t *testing.T) {
	b, err := NewBundle(testFS(), "nl", "ar")
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}

	if got := b.For("ar").Lang(); got != "ar" {
		t.Errorf("For(ar): got lang %q", got)
	}
	if got := b.For("xx").Lang(); got != "nl" {
		t.Errorf("For(unknown) should fall back to default, got %q", got)
	}
}

func TestEmbeddedLocales(t *testing.T) {
	b, err := NewBundle(LocalesFS, "nl", "ar", "en")
	if err != nil {
		t.Fatalf("embedded locales should load: %v", err)
	}
	for _, lang := range []string{"nl", "ar", "en"} {
		for _, key := range []string{"no_text_found", "fallback_action_title", "fallback_action_description"} {
			if got := b.For(lang).T(key); got == key {
				t.Errorf("locale %s missing key %s", lang, key)
			}
		}
	}
}
