// internal/i18n/i18n.go
package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

type I18n struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	defaultLang  string
	matcher      language.Matcher
	tags         []string
}

var instance *I18n
var once sync.Once

// Supported locales, default first.
var localeFiles = []string{"en.json", "fa.json"}

func Initialize(localesPath, defaultLang string) error {
	var err error
	once.Do(func() {
		instance, err = New(localesPath, defaultLang)
	})
	return err
}

func New(localesPath, defaultLang string) (*I18n, error) {
	i := &I18n{
		translations: make(map[string]map[string]string),
		defaultLang:  defaultLang,
	}
	if err := i.LoadTranslations(localesPath); err != nil {
		return nil, err
	}
	return i, nil
}

func (i *I18n) LoadTranslations(localesPath string) error {
	var tags []language.Tag
	var names []string

	for _, file := range localeFiles {
		lang := strings.TrimSuffix(file, ".json")
		filePath := filepath.Join(localesPath, file)

		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", filePath, err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", filePath, err)
		}

		i.mu.Lock()
		i.translations[lang] = translations
		i.mu.Unlock()

		tags = append(tags, language.Make(lang))
		names = append(names, lang)
	}

	i.mu.Lock()
	i.matcher = language.NewMatcher(tags)
	i.tags = names
	i.mu.Unlock()
	return nil
}

// Match picks the best supported locale for an Accept-Language header.
func (i *I18n) Match(acceptLanguage string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if acceptLanguage == "" || i.matcher == nil {
		return i.defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return i.defaultLang
	}
	_, index, confidence := i.matcher.Match(prefs...)
	if confidence == language.No {
		return i.defaultLang
	}
	return i.tags[index]
}

func (i *I18n) T(lang, key string, args ...interface{}) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try to get translation for requested language
	if translations, exists := i.translations[lang]; exists {
		if text, exists := translations[key]; exists {
			if len(args) > 0 {
				return fmt.Sprintf(text, args...)
			}
			return text
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, exists := i.translations[i.defaultLang]; exists {
			if text, exists := translations[key]; exists {
				if len(args) > 0 {
					return fmt.Sprintf(text, args...)
				}
				return text
			}
		}
	}

	// Return key if no translation found
	return key
}

// Global functions
func T(lang, key string, args ...interface{}) string {
	if instance != nil {
		return instance.T(lang, key, args...)
	}
	return key
}

func Match(acceptLanguage string) string {
	if instance != nil {
		return instance.Match(acceptLanguage)
	}
	return "en"
}
