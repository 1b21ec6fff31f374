package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDOI(t *testing.T) {
	assert.True(t, ValidateDOI("10.1000/xyz123"))
	assert.True(t, ValidateDOI("https://doi.org/10.1038/nphys1170"))
	assert.False(t, ValidateDOI("doi:abc"))
	assert.False(t, ValidateDOI(""))
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("ada@lab.example.org"))
	assert.False(t, ValidateEmail("ada@"))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Neuro Lab", SanitizeInput("  Neuro\x00 Lab "))
}

func TestOneOf(t *testing.T) {
	assert.True(t, OneOf("other", ResearchFields))
	assert.False(t, OneOf("astrology", ResearchFields))
}

func TestBadRequestFormats(t *testing.T) {
	err := BadRequest("invalid status %q", "x")
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, `invalid status "x"`, err.Error())
}
