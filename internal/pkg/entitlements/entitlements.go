package entitlements

import "strings"

type Plan string

const (
	PlanFree     Plan = "free"
	PlanStarter  Plan = "starter"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Plans lists all known plans in ascending order.
var Plans = []Plan{PlanFree, PlanStarter, PlanPro, PlanBusiness}

type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneFriendly      Tone = "friendly"
	ToneBold          Tone = "bold"
	ToneWitty         Tone = "witty"
	TonePersuasive    Tone = "persuasive"
	ToneInspirational Tone = "inspirational"
)

type Format string

const (
	FormatLinkedIn   Format = "linkedin"
	FormatInstagram  Format = "instagram"
	FormatTikTok     Format = "tiktok"
	FormatTwitter    Format = "twitter"
	FormatEmail      Format = "email"
	FormatPersuasive Format = "persuasive"
)

type Feature string

const (
	FeatureCalendar      Feature = "calendar"
	FeatureAnalytics     Feature = "analytics"
	FeatureTeam          Feature = "team"
	FeatureBulkExport    Feature = "bulk_export"
	FeatureHashtags      Feature = "hashtags"
	FeatureAISuggestions Feature = "ai_suggestions"
	FeatureCustomTones   Feature = "custom_tones"
	FeatureAPIAccess     Feature = "api_access"
)

// Features lists every gateable feature flag.
var Features = []Feature{
	FeatureCalendar,
	FeatureAnalytics,
	FeatureTeam,
	FeatureBulkExport,
	FeatureHashtags,
	FeatureAISuggestions,
	FeatureCustomTones,
	FeatureAPIAccess,
}

// Entitlement is the full set of allowances unlocked by a plan.
type Entitlement struct {
	AllowedTones   []Tone
	AllowedFormats []Format
	MaxVariants    int
	Features       map[Feature]bool
}

// catalog is the single source of truth for plan allowances. All gating must
// read through EntitlementFor; callers never branch on the plan directly.
// Every field is non-decreasing along free -> starter -> pro -> business.
var catalog = map[Plan]Entitlement{
	PlanFree: {
		AllowedTones:   []Tone{ToneProfessional, ToneCasual, ToneFriendly},
		AllowedFormats: []Format{FormatTwitter, FormatLinkedIn},
		MaxVariants:    1,
		Features:       featureSet(),
	},
	PlanStarter: {
		AllowedTones:   []Tone{ToneProfessional, ToneCasual, ToneFriendly, ToneBold, ToneWitty},
		AllowedFormats: []Format{FormatTwitter, FormatLinkedIn, FormatInstagram, FormatEmail},
		MaxVariants:    3,
		Features:       featureSet(FeatureCalendar, FeatureHashtags),
	},
	PlanPro: {
		AllowedTones:   []Tone{ToneProfessional, ToneCasual, ToneFriendly, ToneBold, ToneWitty, TonePersuasive, ToneInspirational},
		AllowedFormats: []Format{FormatTwitter, FormatLinkedIn, FormatInstagram, FormatEmail, FormatTikTok, FormatPersuasive},
		MaxVariants:    3,
		Features:       featureSet(FeatureCalendar, FeatureHashtags, FeatureAnalytics, FeatureAISuggestions, FeatureCustomTones, FeatureBulkExport),
	},
	PlanBusiness: {
		AllowedTones:   []Tone{ToneProfessional, ToneCasual, ToneFriendly, ToneBold, ToneWitty, TonePersuasive, ToneInspirational},
		AllowedFormats: []Format{FormatTwitter, FormatLinkedIn, FormatInstagram, FormatEmail, FormatTikTok, FormatPersuasive},
		MaxVariants:    3,
		Features:       featureSet(FeatureCalendar, FeatureHashtags, FeatureAnalytics, FeatureAISuggestions, FeatureCustomTones, FeatureBulkExport, FeatureTeam, FeatureAPIAccess),
	},
}

func featureSet(enabled ...Feature) map[Feature]bool {
	m := make(map[Feature]bool, len(Features))
	for _, f := range Features {
		m[f] = false
	}
	for _, f := range enabled {
		m[f] = true
	}
	return m
}

// NormalizePlan maps arbitrary input to a known plan, defaulting to free.
func NormalizePlan(plan string) Plan {
	switch Plan(strings.ToLower(strings.TrimSpace(plan))) {
	case PlanStarter:
		return PlanStarter
	case PlanPro:
		return PlanPro
	case PlanBusiness:
		return PlanBusiness
	default:
		return PlanFree
	}
}

// PlanRank orders plans for upgrade/downgrade comparisons.
func PlanRank(plan Plan) int {
	switch NormalizePlan(string(plan)) {
	case PlanBusiness:
		return 3
	case PlanPro:
		return 2
	case PlanStarter:
		return 1
	default:
		return 0
	}
}

// EntitlementFor returns the allowances for a plan. The catalog is total over
// the plan enum; unknown input degrades to the free plan.
func EntitlementFor(plan Plan) Entitlement {
	if e, ok := catalog[NormalizePlan(string(plan))]; ok {
		return e
	}
	return catalog[PlanFree]
}

// HasFeature reports whether the plan unlocks the given feature.
func HasFeature(plan Plan, feature Feature) bool {
	return EntitlementFor(plan).Features[feature]
}

// AllowsTone reports whether the plan may generate with the given tone.
func AllowsTone(plan Plan, tone Tone) bool {
	for _, t := range EntitlementFor(plan).AllowedTones {
		if t == tone {
			return true
		}
	}
	return false
}

// AllowsFormat reports whether the plan may generate for the given format.
func AllowsFormat(plan Plan, format Format) bool {
	for _, f := range EntitlementFor(plan).AllowedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// MaxVariants returns how many variants per format a plan receives.
func MaxVariants(plan Plan) int {
	return EntitlementFor(plan).MaxVariants
}
