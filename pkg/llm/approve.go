package llm

import (
	"strconv"
	"strings"
)

// SelectApproved maps selection keys from a review surface back onto an
// analysis, producing the approved-changes subset. Keys have the form
// "category:identifier" where the identifier is an index for array
// categories and a map key for map categories. Unknown categories and
// out-of-range identifiers are ignored. Title suggestions are excluded from
// the subset regardless of approval.
func SelectApproved(analysis Analysis, keys []string) (approved ApprovedChanges) {
	for _, key := range keys {
		category, ident, ok := strings.Cut(key, ":")
		if !ok {
			continue
		}

		switch category {
		case "key_skills":
			approved.KeySkills = appendIndexed(approved.KeySkills, analysis.KeySkills, ident)
		case "keywords":
			approved.Keywords = appendIndexed(approved.Keywords, analysis.Keywords, ident)
		case "missing_skills":
			approved.MissingSkills = appendIndexed(approved.MissingSkills, analysis.MissingSkills, ident)
		case "power_words":
			approved.PowerWords = appendIndexed(approved.PowerWords, analysis.PowerWords, ident)
		case "experience_suggestions":
			approved.ExperienceSuggestions = copyKeyed(approved.ExperienceSuggestions, analysis.ExperienceSuggestions, ident)
		case "content_additions":
			approved.ContentAdditions = copyKeyed(approved.ContentAdditions, analysis.ContentAdditions, ident)
		case "format_suggestions":
			approved.FormatSuggestions = copyKeyed(approved.FormatSuggestions, analysis.FormatSuggestions, ident)
		}
	}

	return approved
}

func appendIndexed(dst, src []string, ident string) (result []string) {
	result = dst

	index, err := strconv.Atoi(ident)
	if err != nil || index < 0 || index >= len(src) {
		return result
	}

	result = append(result, src[index])
	return result
}

func copyKeyed(dst, src map[string]string, ident string) (result map[string]string) {
	result = dst

	value, ok := src[ident]
	if !ok {
		return result
	}

	if result == nil {
		result = map[string]string{}
	}
	result[ident] = value
	return result
}
