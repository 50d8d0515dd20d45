package domain

import "time"

// TravelEntryKind discriminates which of the mutually exclusive fields a
// travel entry carries.
type TravelEntryKind string

const (
	TravelByCountry TravelEntryKind = "country"
	TravelByCity    TravelEntryKind = "city"
	TravelByDate    TravelEntryKind = "date"
)

// TravelEntry is one recent-travel declaration. Exactly one of Country,
// City, or Date is set, according to Kind; the wire decoder enforces the
// one-of rule before an entry reaches the domain.
type TravelEntry struct {
	Kind    TravelEntryKind
	Country string
	City    string
	Date    *time.Time
}

// RecentContact declares contact with a confirmed case.
type RecentContact struct {
	Yes  bool
	When *time.Time
}

// CovidQuestionnaireAnswer is a submitted symptom/contact questionnaire.
type CovidQuestionnaireAnswer struct {
	Countries     []TravelEntry
	RecentContact RecentContact
	MajorSymptoms map[string]bool
	MinorSymptoms map[string]bool
}

// Major symptoms that fail the questionnaire on their own.
const (
	SymptomFever               = "fever"
	SymptomFrequentCoughing    = "frequentCoughing"
	SymptomDifficultyBreathing = "difficultyBreathing"
)

var seriousMajorSymptoms = []string{
	SymptomFever,
	SymptomFrequentCoughing,
	SymptomDifficultyBreathing,
}

// CanPass applies the same-day medical rule table. Rules short-circuit at
// the first failure:
//
//  1. recent contact with a confirmed case
//  2. any serious major symptom
//  3. two or more major symptoms
//  4. four or more minor symptoms
//  5. at least one major and one minor symptom
func (a CovidQuestionnaireAnswer) CanPass() bool {
	if a.RecentContact.Yes {
		return false
	}
	for _, symptom := range seriousMajorSymptoms {
		if a.MajorSymptoms[symptom] {
			return false
		}
	}

	majors := countTrue(a.MajorSymptoms)
	minors := countTrue(a.MinorSymptoms)
	switch {
	case majors >= 2:
		return false
	case minors >= 4:
		return false
	case majors >= 1 && minors >= 1:
		return false
	}
	return true
}

func countTrue(symptoms map[string]bool) int {
	count := 0
	for _, present := range symptoms {
		if present {
			count++
		}
	}
	return count
}

// StoredAnswer is a questionnaire answer as it lives in the answer store:
// the submitted fields plus the same-day verdict and server timestamps.
type StoredAnswer struct {
	ID            string
	CanPass       bool
	Countries     []TravelEntry
	RecentContact RecentContact
	MajorSymptoms map[string]bool
	MinorSymptoms map[string]bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
