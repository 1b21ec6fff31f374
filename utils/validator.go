// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	doiRegex   = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
)

// ResearchFields are the research_field values the profile form offers.
var ResearchFields = []string{
	"ai_emotion_modeling",
	"neuroscience_ai_inhibition",
	"ai_memory_consolidation",
	"ai_learning_plasticity",
	"ai_sequence_modeling",
	"other",
}

// ValidateEmail checks if email is valid
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateDOI accepts bare DOIs ("10.1000/xyz") and doi.org URLs.
func ValidateDOI(doi string) bool {
	doi = strings.TrimPrefix(strings.TrimSpace(doi), "https://doi.org/")
	return doiRegex.MatchString(doi)
}

// OneOf reports whether value is in allowed.
func OneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
