package filter

import (
	"context"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

// LanguageName holds the display names of one language code as stored in the
// index: Local is the name in the requested locale, Name the English one.
type LanguageName struct {
	Local string
	Name  string
}

// LanguageResolver maps a language code to its display names for a locale.
type LanguageResolver interface {
	LanguageNames(ctx context.Context, code, locale string) (LanguageName, error)
}

// languageNames resolves every code and returns the deduplicated union of
// all display variants. Legacy locales index languages by English name and
// autonym, so both are resolved and merged for them.
func languageNames(env *Env, k Key, codes []string) ([]string, error) {
	if env.Languages == nil {
		return nil, domain.NewConfigurationError(string(k), "no language resolver configured")
	}

	seen := make(map[string]bool)
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}

	legacy := env.isLegacyLocale()
	for _, code := range codes {
		if legacy {
			en, err := env.Languages.LanguageNames(env.ctx(), code, "en")
			if err != nil {
				return nil, resolveErr(k, code, err)
			}
			self, err := env.Languages.LanguageNames(env.ctx(), code, code)
			if err != nil {
				return nil, resolveErr(k, code, err)
			}
			add(en.Name, en.Local, self.Local)
			continue
		}
		n, err := env.Languages.LanguageNames(env.ctx(), code, env.Locale)
		if err != nil {
			return nil, resolveErr(k, code, err)
		}
		add(n.Local, n.Name)
	}
	return out, nil
}

func resolveErr(k Key, code string, err error) error {
	return domain.NewConfigurationError(string(k), "resolve language %q: %v", code, err)
}

func applyLanguages(b *query.Builder, env *Env, k Key, v any) error {
	codes, err := stringsValue(k, v)
	if err != nil {
		return err
	}
	names, err := languageNames(env, k, codes)
	if err != nil {
		return err
	}
	return query.WhereIn(b, FieldLanguages, names)
}

func applyNativeLanguage(b *query.Builder, env *Env, k Key, v any) error {
	codes, err := stringsValue(k, v)
	if err != nil {
		return err
	}
	names, err := languageNames(env, k, codes)
	if err != nil {
		return err
	}
	return query.WhereIn(b, FieldNativeLanguage, names)
}
