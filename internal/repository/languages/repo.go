package languages

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/filter"
)

// Compile-time check: Repo implements filter.LanguageResolver.
var _ filter.LanguageResolver = (*Repo)(nil)

// Repo resolves language codes to CLDR display names.
type Repo struct {
	cache sync.Map // code|locale -> filter.LanguageName
}

// New creates a language repository.
func New() *Repo {
	return &Repo{}
}

// LanguageNames returns the name of code in locale (Local) and in English
// (Name). Unknown codes return domain.ErrNotFound.
func (r *Repo) LanguageNames(_ context.Context, code, locale string) (filter.LanguageName, error) {
	cacheKey := code + "|" + locale
	if v, ok := r.cache.Load(cacheKey); ok {
		return v.(filter.LanguageName), nil
	}

	tag, err := parseTag(code)
	if err != nil {
		return filter.LanguageName{}, fmt.Errorf("language %q: %w", code, domain.ErrNotFound)
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return filter.LanguageName{}, fmt.Errorf("language %q: %w", code, domain.ErrNotFound)
	}

	out := filter.LanguageName{Local: name, Name: name}
	if loc, err := parseTag(locale); err == nil {
		if namer := display.Languages(loc); namer != nil {
			if local := namer.Name(tag); local != "" {
				out.Local = local
			}
		}
	}

	r.cache.Store(cacheKey, out)
	return out, nil
}

// parseTag accepts both BCP 47 tags and underscore locales (nl_BE).
func parseTag(s string) (language.Tag, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", "-"))
	if s == "" {
		return language.Und, fmt.Errorf("empty language tag")
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("parse %q: %w", s, err)
	}
	return tag, nil
}
