package i18n

import (
	"net/http/httptest"
	"testing"
)

func TestLoadTranslations(t *testing.T) {
	if err := LoadTranslations("."); err != nil {
		t.Fatalf("LoadTranslations failed: %v", err)
	}

	if got := T("en", "IssueFailed"); got != "Book not found or already issued" {
		t.Errorf("Unexpected English text: %q", got)
	}
	if got := T("fr", "Logout"); got != "Se déconnecter" {
		t.Errorf("Unexpected French text: %q", got)
	}
	// Unknown language falls back to English, unknown key to itself
	if got := T("de", "Logout"); got != "Log out" {
		t.Errorf("Expected English fallback, got %q", got)
	}
	if got := T("fr", "NoSuchKey"); got != "NoSuchKey" {
		t.Errorf("Expected key fallback, got %q", got)
	}
}

func TestTranslationsHaveSameKeys(t *testing.T) {
	if err := LoadTranslations("."); err != nil {
		t.Fatalf("LoadTranslations failed: %v", err)
	}
	for key := range translations["en"] {
		if _, ok := translations["fr"][key]; !ok {
			t.Errorf("fr.json is missing %q", key)
		}
	}
	for key := range translations["fr"] {
		if _, ok := translations["en"][key]; !ok {
			t.Errorf("en.json is missing %q", key)
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	if err := LoadTranslations("."); err != nil {
		t.Fatalf("LoadTranslations failed: %v", err)
	}

	tests := map[string]string{
		"":                          "en",
		"fr-CH, fr;q=0.9, en;q=0.8": "fr",
		"de-DE, de;q=0.9":           "en",
		"de-DE, FR;q=0.8":           "fr",
		"en-US,en;q=0.9":            "en",
	}
	for header, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Accept-Language", header)
		}
		if got := DetectLanguage(r); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestLoadTranslationsMissingDir(t *testing.T) {
	if err := LoadTranslations("does-not-exist"); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}
