// Package i18n holds the localized string tables of the bot and resolves
// which table to use for a given language tag.
package i18n

import (
	"slices"
	"strings"
)

// Language is an ISO 639-1 language tag.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
)

func (l Language) String() string {
	return string(l)
}

// Parse normalizes a raw language code reported by the platform.
// It returns an empty Language for garbage input.
func Parse(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	// Telegram may report regional tags like "en-US".
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	if code == "" || len(code) > 3 {
		return ""
	}
	return Language(code)
}

// Provider returns the message table for a language with a fallback to the
// configured default table.
type Provider struct {
	fallback Language
	tables   map[Language]Messages
}

// NewProvider creates a provider with the built-in message tables.
// If there is no table for the requested fallback, Russian is used.
func NewProvider(fallback Language) *Provider {
	tables := map[Language]Messages{
		LanguageEnglish: messagesEN,
		LanguageRussian: messagesRU,
	}
	if _, ok := tables[fallback]; !ok {
		fallback = LanguageRussian
	}
	return &Provider{
		fallback: fallback,
		tables:   tables,
	}
}

// Default returns the fallback language.
func (p *Provider) Default() Language {
	return p.fallback
}

// IsSupported reports whether there is a message table for the language.
func (p *Provider) IsSupported(l Language) bool {
	_, ok := p.tables[l]
	return ok
}

// Messages returns the message table for the language,
// falling back to the default table.
func (p *Provider) Messages(l Language) Messages {
	if m, ok := p.tables[l]; ok {
		return m
	}
	return p.tables[p.fallback]
}

// Languages returns all supported languages in stable order.
func (p *Provider) Languages() []Language {
	out := make([]Language, 0, len(p.tables))
	for l := range p.tables {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}
