package filter

import (
	"context"
	"slices"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/search/query"
)

// DefaultLegacyLocales index language names by English name and autonym.
var DefaultLegacyLocales = []string{"nl_BE", "fr_BE"}

// Env is the per-call context shared by handlers.
type Env struct {
	Context       context.Context
	Locale        string
	Languages     LanguageResolver
	LegacyLocales []string
	// Keys lists every key present in the set, used by handlers whose
	// behavior depends on sibling keys.
	Keys []Key

	parentExcluded bool
}

func (e *Env) ctx() context.Context {
	if e.Context == nil {
		return context.Background()
	}
	return e.Context
}

func (e *Env) isLegacyLocale() bool { return slices.Contains(e.LegacyLocales, e.Locale) }

type handler func(b *query.Builder, env *Env, k Key, v any) error

var handlers = map[Key]handler{
	KeyRole:                   applyRole,
	KeyRoles:                  applyRole,
	KeyGender:                 applyGender,
	KeyPlace:                  applyPlace,
	KeyPlaceName:              unresolved("place names must be resolved before dispatch"),
	KeyCareType:               unresolved("care type must be expanded before dispatch"),
	KeyDistance:               applyDistance,
	KeyBounds:                 applyBounds,
	KeyAvailability:           applyAvailability,
	KeyAvailabilityPreference: applyAvailabilityPreference,
	KeyOccasional:             flag(FieldOccasional),
	KeyRegular:                flag(FieldRegular),
	KeyLanguages:              applyLanguages,
	KeyNativeLanguage:         applyNativeLanguage,
	KeyChores:                 applyChores,
	KeyExperience:             applyExperience,
	KeyExperienceYears:        numericRange(FieldExperienceYears),
	KeyHourlyRate:             numericRange(FieldHourlyRate),
	KeyAge:                    applyAge,
	KeyChildrenCount:          numericRange(FieldChildrenCount),
	KeyCreatedAfter:           since(FieldCreated),
	KeyCreatedBefore:          until(FieldCreated),
	KeyLastLoginAfter:         since(FieldLastLogin),
	KeyActiveWithinDays:       applyActiveWithinDays,
	KeyPremium:                applyPremium,
	KeyMinRating:              minimum(FieldAvgScore),
	KeyMinRecommendations:     minimum(FieldRecommendations),
	KeyHasPhoto:               flag(FieldHasPhoto),
	KeySmoker:                 flag(FieldSmoker),
	KeyHasCar:                 flag(FieldHasCar),
	KeyDrivingLicense:         flag(FieldDrivingLicense),
	KeyPets:                   flag(FieldPets),
	KeyFirstAid:               flag(FieldFirstAid),
	KeyVerified:               flag(FieldVerified),
	KeyEducation:              applyEducation,
	KeyIncludeIDs:             applyIncludeIDs,
	KeyExcludeIDs:             applyExcludeIDs,
	KeyKeyword:                applyKeyword,
	KeyName:                   applyName,
	KeyNameContains:           applyNameContains,
	KeyRaw:                    applyRaw,
	KeySort:                   applySort,
}

// Dispatcher translates a filter Set into builder calls.
type Dispatcher struct {
	languages     LanguageResolver
	legacyLocales []string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLegacyLocales overrides DefaultLegacyLocales.
func WithLegacyLocales(locales ...string) Option {
	return func(d *Dispatcher) { d.legacyLocales = append([]string{}, locales...) }
}

// NewDispatcher creates a dispatcher. languages may be nil when no language
// filters are used.
func NewDispatcher(languages LanguageResolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		languages:     languages,
		legacyLocales: DefaultLegacyLocales,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Validate checks that every key of the set is supported.
func Validate(set Set) error {
	for k := range set {
		if _, ok := handlers[k]; !ok {
			return domain.NewConfigurationError(string(k), "unsupported filter")
		}
	}
	return nil
}

// Apply dispatches every key of the set to its handler in the fixed
// dispatch order. The first failing handler aborts the dispatch.
func (d *Dispatcher) Apply(ctx context.Context, b *query.Builder, set Set, locale string) error {
	if err := Validate(set); err != nil {
		return err
	}

	env := &Env{
		Context:       ctx,
		Locale:        locale,
		Languages:     d.languages,
		LegacyLocales: d.legacyLocales,
	}
	for _, k := range dispatchOrder {
		if set.Has(k) {
			env.Keys = append(env.Keys, k)
		}
	}

	for _, k := range env.Keys {
		if err := handlers[k](b, env, k, set[k]); err != nil {
			return err
		}
	}
	return nil
}

func unresolved(reason string) handler {
	return func(_ *query.Builder, _ *Env, k Key, _ any) error {
		return domain.NewConfigurationError(string(k), "%s", reason)
	}
}
