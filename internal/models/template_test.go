package models

import (
	"strings"
	"testing"

	"github.com/primerapp/primer/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTemplate() Template {
	return Template{
		Title:       "Rent an apartment in Shanghai",
		Description: "Everything from viewing to moving in",
		LocationTag: "CN-SH",
		Steps: []TemplateStep{
			{Title: "Set a budget", Order: 0},
			{Title: "Find an agent", Order: 1},
			{Title: "Sign the lease", Order: 2},
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	t.Run("valid template passes", func(t *testing.T) {
		template := validTemplate()
		assert.NoError(t, template.Validate())
	})

	t.Run("nationwide tag passes", func(t *testing.T) {
		template := validTemplate()
		template.LocationTag = "CN"
		assert.NoError(t, template.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"empty title", func(tpl *Template) { tpl.Title = "" }},
		{"blank title", func(tpl *Template) { tpl.Title = "   " }},
		{"title too long", func(tpl *Template) { tpl.Title = strings.Repeat("a", MaxTemplateTitleLen+1) }},
		{"empty description", func(tpl *Template) { tpl.Description = "" }},
		{"description too long", func(tpl *Template) { tpl.Description = strings.Repeat("a", MaxTemplateDescriptionLen+1) }},
		{"unknown location tag", func(tpl *Template) { tpl.LocationTag = "US-NY" }},
		{"missing location tag", func(tpl *Template) { tpl.LocationTag = "" }},
		{"no steps", func(tpl *Template) { tpl.Steps = nil }},
		{"blank step title", func(tpl *Template) { tpl.Steps[1].Title = "  " }},
		{"step title too long", func(tpl *Template) { tpl.Steps[0].Title = strings.Repeat("a", MaxStepTitleLen+1) }},
		{"duplicate step order", func(tpl *Template) { tpl.Steps[2].Order = 1 }},
		{"order gap", func(tpl *Template) { tpl.Steps[2].Order = 5 }},
		{"negative order", func(tpl *Template) { tpl.Steps[0].Order = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template := validTemplate()
			tt.mutate(&template)

			err := template.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		})
	}
}

func TestAllowedLocationTags(t *testing.T) {
	for _, tag := range []string{"CN", "CN-BJ", "CN-SH", "CN-GZ", "CN-SZ"} {
		assert.True(t, AllowedLocationTags[tag], "expected %s to be allowed", tag)
	}
	assert.False(t, AllowedLocationTags["cn"])
	assert.False(t, AllowedLocationTags["CN-XX"])
}
