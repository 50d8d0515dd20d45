package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanPassRuleTable(t *testing.T) {
	tests := []struct {
		name     string
		answer   CovidQuestionnaireAnswer
		expected bool
	}{
		{
			"clean answer passes",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{SymptomFever: false, "headache": false},
				MinorSymptoms: map[string]bool{"bodyPain": false},
			},
			true,
		},
		{
			"recent contact fails regardless of symptoms",
			CovidQuestionnaireAnswer{
				RecentContact: RecentContact{Yes: true},
				MajorSymptoms: map[string]bool{SymptomFever: false},
				MinorSymptoms: map[string]bool{"bodyPain": false},
			},
			false,
		},
		{
			"fever alone fails",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{SymptomFever: true},
				MinorSymptoms: map[string]bool{},
			},
			false,
		},
		{
			"frequent coughing alone fails",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{SymptomFrequentCoughing: true},
				MinorSymptoms: map[string]bool{},
			},
			false,
		},
		{
			"difficulty breathing alone fails",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{SymptomDifficultyBreathing: true},
				MinorSymptoms: map[string]bool{},
			},
			false,
		},
		{
			"two non-serious majors fail",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{"headache": true, "fatigue": true},
				MinorSymptoms: map[string]bool{},
			},
			false,
		},
		{
			"one non-serious major alone passes",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{"headache": true},
				MinorSymptoms: map[string]bool{"bodyPain": false},
			},
			true,
		},
		{
			"three minors pass",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{"headache": false},
				MinorSymptoms: map[string]bool{"bodyPain": true, "runnyNose": true, "soreThroat": true},
			},
			true,
		},
		{
			"four minors fail",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{"headache": false},
				MinorSymptoms: map[string]bool{"bodyPain": true, "runnyNose": true, "soreThroat": true, "lossOfSmell": true},
			},
			false,
		},
		{
			"one major plus one minor fails",
			CovidQuestionnaireAnswer{
				MajorSymptoms: map[string]bool{"headache": true},
				MinorSymptoms: map[string]bool{"bodyPain": true},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.answer.CanPass())
		})
	}
}
