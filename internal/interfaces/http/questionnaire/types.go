package questionnaire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

// travelEntryPayload decodes one recent-travel entry. The wire shape keeps
// the three optional fields of the original API, but exactly one must be
// present; UnmarshalJSON enforces the one-of rule and sets the kind.
type travelEntryPayload struct {
	Kind    domain.TravelEntryKind
	Country string
	City    string
	Date    *time.Time
}

type travelEntryFields struct {
	Country *string `json:"country"`
	City    *string `json:"city"`
	Date    *string `json:"date"`
}

func (p *travelEntryPayload) UnmarshalJSON(data []byte) error {
	var fields travelEntryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	present := 0
	if fields.Country != nil {
		present++
	}
	if fields.City != nil {
		present++
	}
	if fields.Date != nil {
		present++
	}
	if present != 1 {
		return errors.New("travel entry must set exactly one of country, city, or date")
	}

	switch {
	case fields.Country != nil:
		*p = travelEntryPayload{Kind: domain.TravelByCountry, Country: *fields.Country}
	case fields.City != nil:
		*p = travelEntryPayload{Kind: domain.TravelByCity, City: *fields.City}
	default:
		date, err := parseDateString(*fields.Date)
		if err != nil {
			return fmt.Errorf("travel entry date: %w", err)
		}
		*p = travelEntryPayload{Kind: domain.TravelByDate, Date: &date}
	}
	return nil
}

type recentContactPayload struct {
	Yes  bool    `json:"yes"`
	When *string `json:"when"`
}

// covidAnswerRequest is the intake body for POST /questionnaire/covid.
type covidAnswerRequest struct {
	Countries     []travelEntryPayload  `json:"countries"`
	RecentContact *recentContactPayload `json:"recentContact"`
	MajorSymptoms map[string]bool       `json:"majorSymptoms"`
	MinorSymptoms map[string]bool       `json:"minorSymptoms"`
}

// toDomain validates the required fields and maps the request onto the
// domain answer.
func (req covidAnswerRequest) toDomain() (domain.CovidQuestionnaireAnswer, error) {
	if req.RecentContact == nil {
		return domain.CovidQuestionnaireAnswer{}, errors.New("recentContact is required")
	}
	if len(req.MajorSymptoms) == 0 {
		return domain.CovidQuestionnaireAnswer{}, errors.New("majorSymptoms must not be empty")
	}
	if len(req.MinorSymptoms) == 0 {
		return domain.CovidQuestionnaireAnswer{}, errors.New("minorSymptoms must not be empty")
	}

	contact := domain.RecentContact{Yes: req.RecentContact.Yes}
	if req.RecentContact.When != nil {
		when, err := parseDateString(*req.RecentContact.When)
		if err != nil {
			return domain.CovidQuestionnaireAnswer{}, fmt.Errorf("recentContact.when: %w", err)
		}
		contact.When = &when
	}

	countries := make([]domain.TravelEntry, 0, len(req.Countries))
	for _, entry := range req.Countries {
		countries = append(countries, domain.TravelEntry{
			Kind:    entry.Kind,
			Country: entry.Country,
			City:    entry.City,
			Date:    entry.Date,
		})
	}

	return domain.CovidQuestionnaireAnswer{
		Countries:     countries,
		RecentContact: contact,
		MajorSymptoms: req.MajorSymptoms,
		MinorSymptoms: req.MinorSymptoms,
	}, nil
}

// parseDateString accepts RFC 3339 timestamps or plain `yyyy-mm-dd` dates,
// the two shapes the mobile client sends.
func parseDateString(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", value)
	}
	return parsed, nil
}

type updateInformationRequest struct {
	IsSuspect *bool `json:"isSuspect"`
}

type updateInformationResponse struct {
	Updated bool   `json:"updated"`
	Message string `json:"message,omitempty"`
}

type responsiveLetterResponse struct {
	HaveResponsiveLetter bool `json:"haveResponsiveLetter"`
}

// travelEntryResponse restores the wire shape of a stored travel entry.
type travelEntryResponse struct {
	Country *string    `json:"country,omitempty"`
	City    *string    `json:"city,omitempty"`
	Date    *time.Time `json:"date,omitempty"`
}

type recentContactResponse struct {
	Yes  bool       `json:"yes"`
	When *time.Time `json:"when,omitempty"`
}

type storedAnswerResponse struct {
	ID            string                `json:"id"`
	CanPass       bool                  `json:"canPass"`
	Countries     []travelEntryResponse `json:"countries"`
	RecentContact recentContactResponse `json:"recentContact"`
	MajorSymptoms map[string]bool       `json:"majorSymptoms"`
	MinorSymptoms map[string]bool       `json:"minorSymptoms"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

func mapStoredAnswers(answers []domain.StoredAnswer) []storedAnswerResponse {
	responses := make([]storedAnswerResponse, 0, len(answers))
	for _, answer := range answers {
		responses = append(responses, mapStoredAnswer(answer))
	}
	return responses
}

func mapStoredAnswer(answer domain.StoredAnswer) storedAnswerResponse {
	countries := make([]travelEntryResponse, 0, len(answer.Countries))
	for _, entry := range answer.Countries {
		countries = append(countries, mapTravelEntry(entry))
	}

	return storedAnswerResponse{
		ID:            answer.ID,
		CanPass:       answer.CanPass,
		Countries:     countries,
		RecentContact: recentContactResponse{Yes: answer.RecentContact.Yes, When: answer.RecentContact.When},
		MajorSymptoms: answer.MajorSymptoms,
		MinorSymptoms: answer.MinorSymptoms,
		CreatedAt:     answer.CreatedAt,
		UpdatedAt:     answer.UpdatedAt,
	}
}

func mapTravelEntry(entry domain.TravelEntry) travelEntryResponse {
	switch entry.Kind {
	case domain.TravelByCountry:
		country := entry.Country
		return travelEntryResponse{Country: &country}
	case domain.TravelByCity:
		city := entry.City
		return travelEntryResponse{City: &city}
	default:
		return travelEntryResponse{Date: entry.Date}
	}
}
