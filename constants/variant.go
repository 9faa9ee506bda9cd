package constants

import (
	"strings"
)

// Variant names a model family understood by the external binaries.
type Variant string

const (
	HPYTM     Variant = "HPYTM"
	DHPYTM    Variant = "DHPYTM"
	CHPYTM    Variant = "cHPYTM"
	Rescaling Variant = "rescaling"
)

var allVariants = []Variant{
	HPYTM,
	DHPYTM,
	CHPYTM,
	Rescaling,
}

func VariantsAsStringSlice() []string {
	result := make([]string, len(allVariants))
	for i, v := range allVariants {
		result[i] = string(v)
	}
	return result
}

// IsRescaling reports whether the variant uses the unigram rescaling binaries.
func IsRescaling(variant string) bool {
	return variant == string(Rescaling)
}

// CanonicalVariant matches a user supplied name case-insensitively.
func CanonicalVariant(input string) (Variant, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, v := range allVariants {
		if normalized == strings.ToLower(string(v)) {
			return v, true
		}
	}
	return "", false
}
