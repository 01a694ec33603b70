// Package i18n localizes user-facing messages into Lithuanian and English
// using golang.org/x/text message catalogs.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{language.Lithuanian, language.English}

// Translator resolves message keys against the catalog
type Translator struct {
	catalog  *catalog.Builder
	matcher  language.Matcher
	fallback language.Tag
}

// New builds a translator whose fallback language is defaultLang ("lt" or "en")
func New(defaultLang string) (*Translator, error) {
	fallback := language.Lithuanian
	if defaultLang == "en" {
		fallback = language.English
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for key, e := range messages {
		if err := b.SetString(language.Lithuanian, key, e.lt); err != nil {
			return nil, fmt.Errorf("register lt message %q: %w", key, err)
		}
		if err := b.SetString(language.English, key, e.en); err != nil {
			return nil, fmt.Errorf("register en message %q: %w", key, err)
		}
	}

	// the fallback comes first so unmatched requests resolve to it
	tags := []language.Tag{fallback}
	for _, t := range supported {
		if t != fallback {
			tags = append(tags, t)
		}
	}

	return &Translator{
		catalog:  b,
		matcher:  language.NewMatcher(tags),
		fallback: fallback,
	}, nil
}

// Fallback returns the default language
func (t *Translator) Fallback() language.Tag {
	return t.fallback
}

// Match picks the response language. An explicit preference (cookie or
// query value) wins over the Accept-Language header.
func (t *Translator) Match(preferred, acceptLanguage string) language.Tag {
	if p := strings.TrimSpace(preferred); p != "" {
		if tag, err := language.Parse(p); err == nil {
			if matched, _, conf := t.matcher.Match(tag); conf != language.No {
				return base(matched)
			}
		}
	}
	if acceptLanguage == "" {
		return t.fallback
	}
	matched, _ := language.MatchStrings(t.matcher, acceptLanguage)
	return base(matched)
}

// Has reports whether a message exists for key
func (t *Translator) Has(key string) bool {
	_, ok := messages[key]
	return ok
}

// Translate formats the message for key in lang. The second result is false
// when the key is unknown.
func (t *Translator) Translate(lang language.Tag, key string, args ...any) (string, bool) {
	if !t.Has(key) {
		return "", false
	}
	p := message.NewPrinter(lang, message.Catalog(t.catalog))
	return p.Sprintf(key, args...), true
}

// base strips regional and -u- extensions so the catalog lookup hits lt or en
func base(tag language.Tag) language.Tag {
	b, _ := tag.Base()
	for _, s := range supported {
		if sb, _ := s.Base(); sb == b {
			return s
		}
	}
	return tag
}
