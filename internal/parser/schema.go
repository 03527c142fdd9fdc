package parser

import (
	"regexp"
	"strings"
)

// SchemaKind identifies a landed title file variant.
type SchemaKind int

const (
	// SchemaLegacy stores names as direct keys of the title block, next to a
	// fixed registry of scalar/list fields. Files use the Windows-1252 code page.
	SchemaLegacy SchemaKind = iota
	// SchemaCultural wraps names in a cultural_names block. Files are UTF-8.
	SchemaCultural
)

// NameContainerMarker is the block key holding cultural names in the newer variant.
const NameContainerMarker = "cultural_names"

// Schema is the per-file parsing strategy. It is selected once per file.
type Schema struct {
	Kind SchemaKind
	// NameContainer is the key of the names sub-block, empty when names are flat.
	NameContainer string
	// KnownFields lists keys that are never names.
	KnownFields map[string]bool
}

// Legacy returns the flat-name schema.
func Legacy() Schema {
	return Schema{Kind: SchemaLegacy, KnownFields: legacyFields}
}

// Cultural returns the cultural_names schema.
func Cultural() Schema {
	return Schema{Kind: SchemaCultural, NameContainer: NameContainerMarker, KnownFields: culturalFields}
}

// DetectSchema picks the variant from the presence of the name container marker anywhere in src.
func DetectSchema(src string) Schema {
	if strings.Contains(src, NameContainerMarker) {
		return Cultural()
	}
	return Legacy()
}

func (s Schema) String() string {
	if s.Kind == SchemaCultural {
		return "cultural"
	}
	return "legacy"
}

// IsKnownField reports whether key is a registered non-name field.
func (s Schema) IsKnownField(key string) bool {
	return s.KnownFields[key]
}

var titleIDPattern = regexp.MustCompile(`^[ekdcb]_.+`)

// IsTitleID reports whether s has the shape of a landed title id.
func IsTitleID(s string) bool {
	return titleIDPattern.MatchString(s)
}

var legacyFields = map[string]bool{
	"allow":                         true,
	"assimilate":                    true,
	"caliphate":                     true,
	"capital":                       true,
	"coat_of_arms":                  true,
	"color":                         true,
	"color2":                        true,
	"controls_religion":             true,
	"creation_requires_capital":     true,
	"culture":                       true,
	"dignity":                       true,
	"duchy_revocation":              true,
	"dynasty_title_names":           true,
	"female_names":                  true,
	"foa":                           true,
	"gain_effect":                   true,
	"graphical_culture":             true,
	"has_top_de_jure_capital":       true,
	"holy_order":                    true,
	"holy_site":                     true,
	"independent":                   true,
	"landless":                      true,
	"location_ruler_title":          true,
	"male_names":                    true,
	"mercenary":                     true,
	"mercenary_type":                true,
	"name_tier":                     true,
	"pentarchy":                     true,
	"pirate":                        true,
	"primary":                       true,
	"purple_born_heirs":             true,
	"religion":                      true,
	"short_name":                    true,
	"strength_growth_per_century":   true,
	"title":                         true,
	"title_female":                  true,
	"title_prefix":                  true,
	"tribe":                         true,
	"used_for_dynasty_names":        true,
	"monthly_income":                true,
	"rebel":                         true,
	"replace_captain_on_death":      true,
	"castle_title":                  true,
	"can_use_title_name":            true,
	"historical_nomad_culture":      true,
	"modifier":                      true,
	"mercenary_religion_restricted": true,
}

var culturalFields = map[string]bool{
	"ai_primary_priority":         true,
	"always_follows_primary_heir": true,
	"can_be_named_after_dynasty":  true,
	"can_create":                  true,
	"can_create_on_partition":     true,
	"capital":                     true,
	"color":                       true,
	"de_jure_drift_disabled":      true,
	"definite_form":               true,
	"destroy_if_invalid_heir":     true,
	"destroy_on_gain_same_tier":   true,
	"female_names":                true,
	"landless":                    true,
	"male_names":                  true,
	"no_automatic_claims":         true,
	"province":                    true,
	"require_landless":            true,
	"ruler_uses_title_name":       true,
}
