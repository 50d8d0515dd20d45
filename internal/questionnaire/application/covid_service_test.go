package application

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

type fakeGateway struct {
	mu sync.Mutex

	info      domain.CovidInformation
	infoErr   error
	letter    bool
	letterErr error
	residence domain.Residence
	resErr    error

	updateErr    error
	updates      []UpdateCovidInformation
	updateSignal chan struct{}
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{residence: domain.ResidenceExternal, updateSignal: make(chan struct{}, 4)}
}

func (g *fakeGateway) CovidInformation(context.Context, string) (domain.CovidInformation, error) {
	return g.info, g.infoErr
}

func (g *fakeGateway) HasResponsiveLetter(context.Context, string) (bool, error) {
	return g.letter, g.letterErr
}

func (g *fakeGateway) Residence(context.Context, string) (domain.Residence, error) {
	return g.residence, g.resErr
}

func (g *fakeGateway) UpdateCovidInformation(_ context.Context, _ string, update UpdateCovidInformation) error {
	g.mu.Lock()
	g.updates = append(g.updates, update)
	g.mu.Unlock()
	g.updateSignal <- struct{}{}
	return g.updateErr
}

func (g *fakeGateway) updateCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.updates)
}

type fakeAnswerStore struct {
	mu        sync.Mutex
	answers   map[string][]domain.StoredAnswer
	appendErr error
	findErr   error
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{answers: make(map[string][]domain.StoredAnswer)}
}

func (s *fakeAnswerStore) Append(_ context.Context, userID string, answer domain.StoredAnswer) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[userID] = append(s.answers[userID], answer)
	return nil
}

func (s *fakeAnswerStore) FindByUser(_ context.Context, userID string) ([]domain.StoredAnswer, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StoredAnswer(nil), s.answers[userID]...), nil
}

var serviceNow = time.Date(2021, time.August, 20, 10, 30, 0, 0, time.UTC)

func newTestService(gateway *fakeGateway, store *fakeAnswerStore) CovidService {
	return NewCovidService(CovidServiceConfig{
		Logger:   log.New(io.Discard, "", 0),
		Academic: gateway,
		Answers:  store,
		Evaluator: domain.Evaluator{
			Thresholds: domain.DefaultDayThresholds(),
			Now:        func() time.Time { return serviceNow },
		},
		Location: time.UTC,
		Now:      func() time.Time { return serviceNow },
	})
}

func TestValidationHappyPath(t *testing.T) {
	gateway := newFakeGateway()
	gateway.letter = true
	gateway.info = domain.CovidInformation{IsInQuarantine: true}

	result, err := newTestService(gateway, newFakeAnswerStore()).Validation(context.Background(), "1130745")
	require.NoError(t, err)

	assert.False(t, result.AllowAccess)
	assert.Equal(t, domain.ReasonIsInQuarantine, result.Reason)
	assert.Equal(t, gateway.info, result.UsedData)
}

func TestValidationDegradesOnUpstreamFailure(t *testing.T) {
	gateway := newFakeGateway()
	gateway.infoErr = errors.New("academic down")
	gateway.letterErr = errors.New("academic down")
	gateway.resErr = errors.New("academic down")

	result, err := newTestService(gateway, newFakeAnswerStore()).Validation(context.Background(), "1130745")
	require.NoError(t, err)

	// Declaration degrades to all-false, the letter to missing: the verdict
	// denies access for the letter, not for an error.
	assert.False(t, result.AllowAccess)
	assert.Equal(t, domain.ReasonNoResponsiveLetter, result.Reason)
	assert.Equal(t, domain.CovidInformation{}, result.UsedData)
}

func TestValidationEvaluatesTodayInServiceLocation(t *testing.T) {
	// 2021-08-21 01:00 UTC is still 2021-08-20 at UTC-6. A quarantine ending
	// on the 20th must count as active for the whole business day, even when
	// the host clock has already rolled over to the 21st.
	loc := time.FixedZone("CST", -6*60*60)
	instant := time.Date(2021, time.August, 21, 1, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.August, 20, 0, 0, 0, 0, time.UTC)

	gateway := newFakeGateway()
	gateway.letter = true
	gateway.info = domain.CovidInformation{IsInQuarantine: true, QuarantineEndDate: &end}

	service := NewCovidService(CovidServiceConfig{
		Logger:    log.New(io.Discard, "", 0),
		Academic:  gateway,
		Answers:   newFakeAnswerStore(),
		Evaluator: domain.Evaluator{Thresholds: domain.DefaultDayThresholds()},
		Location:  loc,
		Now:       func() time.Time { return instant },
	})

	result, err := service.Validation(context.Background(), "1130745")
	require.NoError(t, err)

	assert.False(t, result.AllowAccess)
	assert.Equal(t, domain.ReasonIsInQuarantine, result.Reason)
}

func TestSubmitAnswerPassingStoresAndSkipsSuspectMark(t *testing.T) {
	gateway := newFakeGateway()
	gateway.letter = true
	store := newFakeAnswerStore()

	answer := domain.CovidQuestionnaireAnswer{
		MajorSymptoms: map[string]bool{"headache": false},
		MinorSymptoms: map[string]bool{"bodyPain": false},
	}
	result, err := newTestService(gateway, store).SubmitAnswer(context.Background(), "1130745", answer)
	require.NoError(t, err)
	assert.True(t, result.AllowAccess)

	stored := store.answers["1130745"]
	require.Len(t, stored, 1)
	assert.True(t, stored[0].CanPass)
	assert.NotEmpty(t, stored[0].ID)
	assert.True(t, stored[0].CreatedAt.Equal(serviceNow))

	select {
	case <-gateway.updateSignal:
		t.Fatal("passing answer must not mark the user as suspect")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmitAnswerFailingMarksSuspect(t *testing.T) {
	gateway := newFakeGateway()
	gateway.letter = true
	store := newFakeAnswerStore()

	answer := domain.CovidQuestionnaireAnswer{
		RecentContact: domain.RecentContact{Yes: true},
		MajorSymptoms: map[string]bool{"headache": false},
		MinorSymptoms: map[string]bool{"bodyPain": false},
	}
	result, err := newTestService(gateway, store).SubmitAnswer(context.Background(), "1130745", answer)
	require.NoError(t, err)
	require.Len(t, store.answers["1130745"], 1)
	assert.False(t, store.answers["1130745"][0].CanPass)
	// The verdict reflects upstream state, not the same-day answer: the
	// suspect flag only shows up once the academic system records it.
	assert.True(t, result.AllowAccess)

	select {
	case <-gateway.updateSignal:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a suspect-flag update dispatch")
	}

	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	require.Len(t, gateway.updates, 1)
	require.NotNil(t, gateway.updates[0].IsSuspect)
	assert.True(t, *gateway.updates[0].IsSuspect)
}

func TestSubmitAnswerSuspectMarkFailureDoesNotFailResponse(t *testing.T) {
	gateway := newFakeGateway()
	gateway.letter = true
	gateway.updateErr = errors.New("academic down")
	store := newFakeAnswerStore()

	answer := domain.CovidQuestionnaireAnswer{
		RecentContact: domain.RecentContact{Yes: true},
		MajorSymptoms: map[string]bool{"headache": false},
		MinorSymptoms: map[string]bool{"bodyPain": false},
	}
	result, err := newTestService(gateway, store).SubmitAnswer(context.Background(), "1130745", answer)
	require.NoError(t, err)
	assert.NotEmpty(t, result.QRURL)

	select {
	case <-gateway.updateSignal:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a suspect-flag update attempt")
	}
	assert.Equal(t, 1, gateway.updateCount())
}

func TestSubmitAnswerPersistenceFailurePropagates(t *testing.T) {
	gateway := newFakeGateway()
	store := newFakeAnswerStore()
	store.appendErr = errors.New("mongo down")

	answer := domain.CovidQuestionnaireAnswer{
		MajorSymptoms: map[string]bool{"headache": false},
		MinorSymptoms: map[string]bool{"bodyPain": false},
	}
	_, err := newTestService(gateway, store).SubmitAnswer(context.Background(), "1130745", answer)
	assert.Error(t, err)
}

func TestTodayAnswersFiltersByCalendarDay(t *testing.T) {
	gateway := newFakeGateway()
	store := newFakeAnswerStore()
	store.answers["1130745"] = []domain.StoredAnswer{
		{ID: "yesterday", CreatedAt: serviceNow.AddDate(0, 0, -1)},
		{ID: "early-today", CreatedAt: time.Date(2021, time.August, 20, 0, 0, 1, 0, time.UTC)},
		{ID: "late-today", CreatedAt: time.Date(2021, time.August, 20, 23, 59, 59, 0, time.UTC)},
		{ID: "tomorrow", CreatedAt: serviceNow.AddDate(0, 0, 1)},
	}

	answers, err := newTestService(gateway, store).TodayAnswers(context.Background(), "1130745")
	require.NoError(t, err)

	require.Len(t, answers, 2)
	assert.Equal(t, "early-today", answers[0].ID)
	assert.Equal(t, "late-today", answers[1].ID)
}

func TestAnswersEmptyForUnknownUser(t *testing.T) {
	answers, err := newTestService(newFakeGateway(), newFakeAnswerStore()).Answers(context.Background(), "1130745")
	require.NoError(t, err)
	assert.Empty(t, answers)
}
