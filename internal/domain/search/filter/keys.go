package filter

import "github.com/kailas-cloud/matchdex/internal/domain/search/query"

// Key names a supported filter.
type Key string

// Supported filter keys.
const (
	KeyRole                   Key = "role"
	KeyRoles                  Key = "roles"
	KeyGender                 Key = "gender"
	KeyPlace                  Key = "place"
	KeyPlaceName              Key = "placeName"
	KeyDistance               Key = "distance"
	KeyBounds                 Key = "bounds"
	KeyAvailability           Key = "availability"
	KeyAvailabilityPreference Key = "availabilityPreference"
	KeyOccasional             Key = "occasional"
	KeyRegular                Key = "regular"
	KeyCareType               Key = "careType"
	KeyLanguages              Key = "languages"
	KeyNativeLanguage         Key = "nativeLanguage"
	KeyChores                 Key = "chores"
	KeyExperience             Key = "experience"
	KeyExperienceYears        Key = "experienceYears"
	KeyHourlyRate             Key = "hourlyRate"
	KeyAge                    Key = "age"
	KeyChildrenCount          Key = "childrenCount"
	KeyCreatedAfter           Key = "createdAfter"
	KeyCreatedBefore          Key = "createdBefore"
	KeyLastLoginAfter         Key = "lastLoginAfter"
	KeyActiveWithinDays       Key = "activeWithinDays"
	KeyPremium                Key = "premium"
	KeyMinRating              Key = "minRating"
	KeyMinRecommendations     Key = "minRecommendations"
	KeyHasPhoto               Key = "hasPhoto"
	KeySmoker                 Key = "smoker"
	KeyHasCar                 Key = "hasCar"
	KeyDrivingLicense         Key = "drivingLicense"
	KeyPets                   Key = "pets"
	KeyFirstAid               Key = "firstAid"
	KeyVerified               Key = "verified"
	KeyEducation              Key = "education"
	KeyIncludeIDs             Key = "includeIds"
	KeyExcludeIDs             Key = "excludeIds"
	KeyKeyword                Key = "keyword"
	KeyName                   Key = "name"
	KeyNameContains           Key = "nameContains"
	KeySort                   Key = "sort"
	KeyRaw                    Key = "raw"
)

// Index fields of the user document.
const (
	FieldRole               = "webrole_id"
	FieldGender             = "gender"
	FieldPlace              = "place_id"
	FieldLocation           = "location"
	FieldAvailabilityPrefix = "availability."
	FieldOccasional         = "available_occasional"
	FieldRegular            = "available_regular"
	FieldLanguages          = "languages"
	FieldNativeLanguage     = "native_language"
	FieldChores             = "chores"
	FieldExperience         = "experience_age_groups"
	FieldExperienceYears    = "experience_years"
	FieldHourlyRate         = "hourly_rate"
	FieldBirthYear          = "birth_year"
	FieldChildrenCount      = "children_count"
	FieldCreated            = "created"
	FieldLastLogin          = query.FieldLastLogin
	FieldLastSearch         = "last_search"
	FieldPremiumUntil       = "premium_until"
	FieldAvgScore           = "avg_recommendation_score"
	FieldRecommendations    = "recommendation_count"
	FieldHasPhoto           = "has_photo"
	FieldSmoker             = "smoker"
	FieldHasCar             = "has_car"
	FieldDrivingLicense     = "driving_license"
	FieldPets               = "pets"
	FieldFirstAid           = "first_aid"
	FieldVerified           = "verified"
	FieldEducation          = "education_level"
	FieldID                 = "_id"
	FieldAbout              = "about"
	FieldFirstName          = "first_name"
)

// dispatchOrder fixes the order in which present keys are applied, so the
// same Set always yields the same request. Sort runs last.
var dispatchOrder = []Key{
	KeyRole, KeyRoles, KeyGender, KeyPlace, KeyPlaceName, KeyCareType,
	KeyDistance, KeyBounds,
	KeyAvailability, KeyAvailabilityPreference, KeyOccasional, KeyRegular,
	KeyLanguages, KeyNativeLanguage, KeyChores, KeyExperience, KeyExperienceYears,
	KeyHourlyRate, KeyAge, KeyChildrenCount,
	KeyCreatedAfter, KeyCreatedBefore, KeyLastLoginAfter, KeyActiveWithinDays,
	KeyPremium, KeyMinRating, KeyMinRecommendations,
	KeyHasPhoto, KeySmoker, KeyHasCar, KeyDrivingLicense, KeyPets, KeyFirstAid, KeyVerified,
	KeyEducation, KeyIncludeIDs, KeyExcludeIDs,
	KeyKeyword, KeyName, KeyNameContains, KeyRaw,
	KeySort,
}
