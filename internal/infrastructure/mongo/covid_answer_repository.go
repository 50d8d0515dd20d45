package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ummobile/ummobile-services/api/internal/questionnaire/application"
	"github.com/ummobile/ummobile-services/api/internal/questionnaire/domain"
)

// CovidAnswerRepository stores questionnaire answers in a single collection,
// one document per user keyed by the user id.
type CovidAnswerRepository struct {
	answers *mongo.Collection
}

// NewCovidAnswerRepository binds the repository to its collection.
func NewCovidAnswerRepository(db *mongo.Database, collection string) *CovidAnswerRepository {
	return &CovidAnswerRepository{answers: db.Collection(collection)}
}

var _ application.AnswerRepository = (*CovidAnswerRepository)(nil)

// Append pushes the answer onto the user's answer array, creating the
// document on first submission. Answers are never mutated afterwards, so no
// optimistic concurrency control is needed.
func (r *CovidAnswerRepository) Append(ctx context.Context, userID string, answer domain.StoredAnswer) error {
	filter := bson.M{"_id": userID}
	update := bson.M{"$push": bson.M{"answers": newAnswerDocument(answer)}}
	opts := options.Update().SetUpsert(true)

	_, err := r.answers.UpdateOne(ctx, filter, update, opts)
	return err
}

// FindByUser returns every stored answer for the user in submission order.
// A user with no document yet yields an empty slice, not an error.
func (r *CovidAnswerRepository) FindByUser(ctx context.Context, userID string) ([]domain.StoredAnswer, error) {
	var doc CovidQuestionnaireDocument
	err := r.answers.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.StoredAnswer{}, nil
	}
	if err != nil {
		return nil, err
	}

	answers := make([]domain.StoredAnswer, 0, len(doc.Answers))
	for _, answerDoc := range doc.Answers {
		answers = append(answers, mapAnswerDocument(answerDoc))
	}
	return answers, nil
}
