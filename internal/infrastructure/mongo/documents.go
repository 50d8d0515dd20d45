package mongo

import (
	"time"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

// CovidQuestionnaireDocument is the per-user answer store document: one
// document per user id, answers appended in submission order.
type CovidQuestionnaireDocument struct {
	ID      string                `bson:"_id"`
	Answers []CovidAnswerDocument `bson:"answers"`
}

// CovidAnswerDocument is one submitted questionnaire answer with its
// same-day verdict and server timestamps.
type CovidAnswerDocument struct {
	ID            string                `bson:"id"`
	CanPass       bool                  `bson:"canPass"`
	Countries     []TravelEntryDocument `bson:"countries,omitempty"`
	RecentContact RecentContactDocument `bson:"recentContact"`
	MajorSymptoms map[string]bool       `bson:"majorSymptoms"`
	MinorSymptoms map[string]bool       `bson:"minorSymptoms"`
	CreatedAt     time.Time             `bson:"createdAt"`
	UpdatedAt     time.Time             `bson:"updatedAt"`
}

// TravelEntryDocument keeps the original three-optional-field wire shape on
// disk; exactly one field is populated per entry.
type TravelEntryDocument struct {
	Country *string    `bson:"country,omitempty"`
	City    *string    `bson:"city,omitempty"`
	Date    *time.Time `bson:"date,omitempty"`
}

// RecentContactDocument is the embedded contact declaration.
type RecentContactDocument struct {
	Yes  bool       `bson:"yes"`
	When *time.Time `bson:"when,omitempty"`
}

func newAnswerDocument(answer domain.StoredAnswer) CovidAnswerDocument {
	countries := make([]TravelEntryDocument, 0, len(answer.Countries))
	for _, entry := range answer.Countries {
		countries = append(countries, newTravelEntryDocument(entry))
	}

	return CovidAnswerDocument{
		ID:            answer.ID,
		CanPass:       answer.CanPass,
		Countries:     countries,
		RecentContact: RecentContactDocument{Yes: answer.RecentContact.Yes, When: answer.RecentContact.When},
		MajorSymptoms: answer.MajorSymptoms,
		MinorSymptoms: answer.MinorSymptoms,
		CreatedAt:     answer.CreatedAt,
		UpdatedAt:     answer.UpdatedAt,
	}
}

func newTravelEntryDocument(entry domain.TravelEntry) TravelEntryDocument {
	doc := TravelEntryDocument{}
	switch entry.Kind {
	case domain.TravelByCountry:
		country := entry.Country
		doc.Country = &country
	case domain.TravelByCity:
		city := entry.City
		doc.City = &city
	case domain.TravelByDate:
		doc.Date = entry.Date
	}
	return doc
}

func mapAnswerDocument(doc CovidAnswerDocument) domain.StoredAnswer {
	countries := make([]domain.TravelEntry, 0, len(doc.Countries))
	for _, entry := range doc.Countries {
		countries = append(countries, mapTravelEntryDocument(entry))
	}

	return domain.StoredAnswer{
		ID:            doc.ID,
		CanPass:       doc.CanPass,
		Countries:     countries,
		RecentContact: domain.RecentContact{Yes: doc.RecentContact.Yes, When: doc.RecentContact.When},
		MajorSymptoms: doc.MajorSymptoms,
		MinorSymptoms: doc.MinorSymptoms,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func mapTravelEntryDocument(doc TravelEntryDocument) domain.TravelEntry {
	switch {
	case doc.Country != nil:
		return domain.TravelEntry{Kind: domain.TravelByCountry, Country: *doc.Country}
	case doc.City != nil:
		return domain.TravelEntry{Kind: domain.TravelByCity, City: *doc.City}
	default:
		return domain.TravelEntry{Kind: domain.TravelByDate, Date: doc.Date}
	}
}
