package application

import (
	"context"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

// AcademicGateway is the port to the upstream academic system that owns the
// per-user COVID declaration, the responsive-letter flag, and the residence
// type.
type AcademicGateway interface {
	CovidInformation(ctx context.Context, userID string) (domain.CovidInformation, error)
	HasResponsiveLetter(ctx context.Context, userID string) (bool, error)
	Residence(ctx context.Context, userID string) (domain.Residence, error)
	UpdateCovidInformation(ctx context.Context, userID string, update UpdateCovidInformation) error
}

// UpdateCovidInformation carries the mutable declaration fields. Nil means
// leave the field untouched.
type UpdateCovidInformation struct {
	IsSuspect *bool
}

// AnswerRepository is the port to the per-user append-only answer store.
type AnswerRepository interface {
	Append(ctx context.Context, userID string, answer domain.StoredAnswer) error
	FindByUser(ctx context.Context, userID string) ([]domain.StoredAnswer, error)
}

// CovidService exposes the questionnaire use-cases to the HTTP layer.
type CovidService interface {
	Information(ctx context.Context, userID string) (domain.CovidInformation, error)
	ResponsiveLetter(ctx context.Context, userID string) (bool, error)
	Validation(ctx context.Context, userID string) (domain.CovidValidation, error)
	UpdateInformation(ctx context.Context, userID string, update UpdateCovidInformation) error
	SubmitAnswer(ctx context.Context, userID string, answer domain.CovidQuestionnaireAnswer) (domain.CovidValidation, error)
	Answers(ctx context.Context, userID string) ([]domain.StoredAnswer, error)
	TodayAnswers(ctx context.Context, userID string) ([]domain.StoredAnswer, error)
}
