package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

const suspectMarkTimeout = 10 * time.Second

// covidService implements CovidService. Upstream read failures degrade to
// documented zero values so that evaluation endpoints keep answering while
// the academic system is down; only answer-store writes surface errors.
type covidService struct {
	logger    *log.Logger
	academic  AcademicGateway
	answers   AnswerRepository
	evaluator domain.Evaluator
	location  *time.Location
	now       func() time.Time
}

// CovidServiceConfig defines dependencies for NewCovidService.
type CovidServiceConfig struct {
	Logger    *log.Logger
	Academic  AcademicGateway
	Answers   AnswerRepository
	Evaluator domain.Evaluator
	Location  *time.Location
	Now       func() time.Time
}

// NewCovidService creates a CovidService.
func NewCovidService(cfg CovidServiceConfig) CovidService {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	evaluator := cfg.Evaluator
	if evaluator.Now == nil {
		// The evaluator must see the same calendar day as the answer
		// timestamps and the today-filter, not the host zone's.
		evaluator.Now = func() time.Time { return now().In(location) }
	}
	return &covidService{
		logger:    cfg.Logger,
		academic:  cfg.Academic,
		answers:   cfg.Answers,
		evaluator: evaluator,
		location:  location,
		now:       now,
	}
}

func (s *covidService) Information(ctx context.Context, userID string) (domain.CovidInformation, error) {
	info, err := s.academic.CovidInformation(ctx, userID)
	if err != nil {
		s.logger.Printf("covid information fetch failed for %s, using empty declaration: %v", userID, err)
		return domain.CovidInformation{}, nil
	}
	return info, nil
}

func (s *covidService) ResponsiveLetter(ctx context.Context, userID string) (bool, error) {
	has, err := s.academic.HasResponsiveLetter(ctx, userID)
	if err != nil {
		s.logger.Printf("responsive letter fetch failed for %s, assuming missing: %v", userID, err)
		return false, nil
	}
	return has, nil
}

// Validation fetches the declaration, the responsive-letter flag, and the
// residence concurrently, then evaluates. Each fetch degrades independently
// to its zero value, so the group never returns an error.
func (s *covidService) Validation(ctx context.Context, userID string) (domain.CovidValidation, error) {
	var (
		info      domain.CovidInformation
		hasLetter bool
		residence = domain.ResidenceUnknown
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		info, _ = s.Information(groupCtx, userID)
		return nil
	})
	group.Go(func() error {
		hasLetter, _ = s.ResponsiveLetter(groupCtx, userID)
		return nil
	})
	group.Go(func() error {
		fetched, err := s.academic.Residence(groupCtx, userID)
		if err != nil {
			s.logger.Printf("residence fetch failed for %s, using unknown: %v", userID, err)
			return nil
		}
		residence = fetched
		return nil
	})
	if err := group.Wait(); err != nil {
		return domain.CovidValidation{}, err
	}

	return s.evaluator.Evaluate(userID, info, hasLetter, residence), nil
}

func (s *covidService) UpdateInformation(ctx context.Context, userID string, update UpdateCovidInformation) error {
	return s.academic.UpdateCovidInformation(ctx, userID, update)
}

// SubmitAnswer decides the same-day verdict, persists the answer, and
// re-evaluates with fresh upstream data. A failing answer flips the upstream
// suspect flag on a detached goroutine so a slow or failing academic system
// cannot block the response.
func (s *covidService) SubmitAnswer(ctx context.Context, userID string, answer domain.CovidQuestionnaireAnswer) (domain.CovidValidation, error) {
	canPass := answer.CanPass()
	now := s.now().In(s.location)

	stored := domain.StoredAnswer{
		ID:            uuid.NewString(),
		CanPass:       canPass,
		Countries:     answer.Countries,
		RecentContact: answer.RecentContact,
		MajorSymptoms: answer.MajorSymptoms,
		MinorSymptoms: answer.MinorSymptoms,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.answers.Append(ctx, userID, stored); err != nil {
		return domain.CovidValidation{}, fmt.Errorf("append covid questionnaire answer: %w", err)
	}

	if !canPass {
		go s.markSuspect(userID)
	}

	return s.Validation(ctx, userID)
}

// markSuspect is the fire-and-forget upstream write dispatched after a
// failing questionnaire. Failures are logged and otherwise ignored.
func (s *covidService) markSuspect(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), suspectMarkTimeout)
	defer cancel()

	suspect := true
	update := UpdateCovidInformation{IsSuspect: &suspect}
	if err := s.academic.UpdateCovidInformation(ctx, userID, update); err != nil {
		s.logger.Printf("suspect flag update failed for %s: %v", userID, err)
	}
}

func (s *covidService) Answers(ctx context.Context, userID string) ([]domain.StoredAnswer, error) {
	return s.answers.FindByUser(ctx, userID)
}

// TodayAnswers returns the stored answers created on the current calendar
// day in the service timezone.
func (s *covidService) TodayAnswers(ctx context.Context, userID string) ([]domain.StoredAnswer, error) {
	answers, err := s.answers.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().In(s.location)
	filtered := make([]domain.StoredAnswer, 0, len(answers))
	for _, answer := range answers {
		if domain.SameDay(answer.CreatedAt.In(s.location), today) {
			filtered = append(filtered, answer)
		}
	}
	return filtered, nil
}
