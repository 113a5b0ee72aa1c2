package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/ecoscout/internal/core/domain"
)

const validBody = `{"isEcosystemOrg":true,"type":"incubator","category":"Support Programs","subcategory":"Accelerator","role_summary":"Runs a 12-week accelerator in Dubai.","confidence":0.86}`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", validBody, validBody},
		{"fenced json", "Sure! ```json\n" + validBody + "\n```", validBody},
		{"fenced no lang", "```\n" + validBody + "\n```\nthanks", validBody},
		{"prose around braces", "Here you go: " + validBody + " Hope it helps {not json}", validBody},
		{"brace inside string", `{"role_summary":"uses {curly} braces","x":1} trailing`, `{"role_summary":"uses {curly} braces","x":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	for _, raw := range []string{"", "   ", "no json here", "{unterminated"} {
		_, err := ExtractJSON(raw)
		assert.ErrorIs(t, err, ErrNoJSON, "raw=%q", raw)
	}
}

func TestParse_FencedBlockWithProse(t *testing.T) {
	c, err := Parse("Sure! ```json\n" + validBody + "\n```")
	require.NoError(t, err)

	assert.True(t, c.IsEcosystemOrg)
	assert.Equal(t, domain.OrgTypeIncubator, c.Type)
	assert.Equal(t, "Support Programs", c.Category)
	assert.Equal(t, "Accelerator", c.Subcategory)
	assert.Equal(t, 0.86, c.Confidence)
	assert.Empty(t, c.Provider)
	assert.False(t, c.Degraded)
}

func TestParse_ClampsConfidence(t *testing.T) {
	tests := []struct {
		body string
		want float64
	}{
		{`{"isEcosystemOrg":true,"category":"a","subcategory":"b","role_summary":"c","confidence":1.4}`, 1.0},
		{`{"isEcosystemOrg":true,"category":"a","subcategory":"b","role_summary":"c","confidence":-0.2}`, 0.0},
		{`{"isEcosystemOrg":false,"category":"a","subcategory":"b","role_summary":"c","confidence":0.5}`, 0.5},
	}
	for _, tt := range tests {
		c, err := Parse(tt.body)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.Confidence)
	}
}

func TestParse_UnknownTypeBecomesOther(t *testing.T) {
	c, err := Parse(`{"isEcosystemOrg":true,"type":"bank","category":"a","subcategory":"b","role_summary":"c","confidence":0.9}`)
	require.NoError(t, err)
	assert.Equal(t, domain.OrgTypeOther, c.Type)
}

func TestParse_RejectsInvalidFields(t *testing.T) {
	tests := map[string]string{
		"missing bool":       `{"category":"a","subcategory":"b","role_summary":"c","confidence":0.9}`,
		"string bool":        `{"isEcosystemOrg":"yes","category":"a","subcategory":"b","role_summary":"c","confidence":0.9}`,
		"empty category":     `{"isEcosystemOrg":true,"category":"  ","subcategory":"b","role_summary":"c","confidence":0.9}`,
		"numeric subcat":     `{"isEcosystemOrg":true,"category":"a","subcategory":3,"role_summary":"c","confidence":0.9}`,
		"missing summary":    `{"isEcosystemOrg":true,"category":"a","subcategory":"b","confidence":0.9}`,
		"string confidence":  `{"isEcosystemOrg":true,"category":"a","subcategory":"b","role_summary":"c","confidence":"high"}`,
		"missing confidence": `{"isEcosystemOrg":true,"category":"a","subcategory":"b","role_summary":"c"}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(body)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidField), "got %v", err)
		})
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse(`{"isEcosystemOrg": true, "category": }`)
	assert.ErrorIs(t, err, ErrNoJSON)
}
