package service

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/alt-choice/internal/domain"
	"github.com/actuallystonmai/alt-choice/internal/logging"
	"github.com/actuallystonmai/alt-choice/internal/repository"
)

const (
	fieldQueryUserEmail      = "queryUser.email"
	fieldRecommendationCount = "recommendationCount"
	fieldQueryID             = "queryId"
	fieldRecommenderEmail    = "recommenderEmail"
	fieldUserEmail           = "userEmail"
)

// Service maps each API operation onto exactly one store call. It does not
// keep Query.recommendationCount in step with the recommendation
// collection; clients call IncrementRecommendationCount and
// DecrementRecommendationCount themselves.
type Service struct {
	queries         repository.Collection
	recommendations repository.Collection
}

func NewService(store repository.Store) *Service {
	return &Service{
		queries:         store.Collection(domain.QueryCollection),
		recommendations: store.Collection(domain.RecommendationCollection),
	}
}

// ---------------- Queries --------------------

func (s *Service) ListQueries(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.queries.Find(ctx, nil)
	return docs, logFailure(ctx, "list queries", err)
}

func (s *Service) ListQueriesByUser(ctx context.Context, email string) ([]domain.Document, error) {
	docs, err := s.queries.Find(ctx, domain.Filter{fieldQueryUserEmail: email})
	return docs, logFailure(ctx, "list queries by user", err)
}

// GetQuery returns nil without error when the id is unknown.
func (s *Service) GetQuery(ctx context.Context, id string) (domain.Document, error) {
	doc, err := s.queries.FindByID(ctx, id)
	return doc, logFailure(ctx, "get query", err)
}

func (s *Service) CreateQuery(ctx context.Context, doc domain.Document) (*domain.InsertResult, error) {
	res, err := s.queries.InsertOne(ctx, doc)
	return res, logFailure(ctx, "create query", err)
}

// UpdateQuery sets the posted fields, creating the query if the id is unknown.
func (s *Service) UpdateQuery(ctx context.Context, id string, fields domain.Document) (*domain.UpdateResult, error) {
	res, err := s.queries.SetByID(ctx, id, fields, true)
	return res, logFailure(ctx, "update query", err)
}

func (s *Service) DeleteQuery(ctx context.Context, id string) (*domain.DeleteResult, error) {
	res, err := s.queries.DeleteByID(ctx, id)
	return res, logFailure(ctx, "delete query", err)
}

func (s *Service) IncrementRecommendationCount(ctx context.Context, id string) (*domain.UpdateResult, error) {
	res, err := s.queries.IncrementByID(ctx, id, fieldRecommendationCount, 1)
	return res, logFailure(ctx, "increment recommendation count", err)
}

// DecrementRecommendationCount has no floor; the count can go negative.
func (s *Service) DecrementRecommendationCount(ctx context.Context, id string) (*domain.UpdateResult, error) {
	res, err := s.queries.IncrementByID(ctx, id, fieldRecommendationCount, -1)
	return res, logFailure(ctx, "decrement recommendation count", err)
}

// ---------------- Recommendations --------------------

func (s *Service) ListRecommendations(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.recommendations.Find(ctx, nil)
	return docs, logFailure(ctx, "list recommendations", err)
}

func (s *Service) ListRecommendationsForQuery(ctx context.Context, queryID string) ([]domain.Document, error) {
	docs, err := s.recommendations.Find(ctx, domain.Filter{fieldQueryID: queryID})
	return docs, logFailure(ctx, "list recommendations for query", err)
}

// ListRecommendationsByRecommender returns recommendations written by email.
func (s *Service) ListRecommendationsByRecommender(ctx context.Context, email string) ([]domain.Document, error) {
	docs, err := s.recommendations.Find(ctx, domain.Filter{fieldRecommenderEmail: email})
	return docs, logFailure(ctx, "list recommendations by recommender", err)
}

// ListRecommendationsForQueryUser returns recommendations made on queries authored by email.
func (s *Service) ListRecommendationsForQueryUser(ctx context.Context, email string) ([]domain.Document, error) {
	docs, err := s.recommendations.Find(ctx, domain.Filter{fieldUserEmail: email})
	return docs, logFailure(ctx, "list recommendations for query user", err)
}

// CreateRecommendation stores doc as-is. queryId is not checked against
// the query collection.
func (s *Service) CreateRecommendation(ctx context.Context, doc domain.Document) (*domain.InsertResult, error) {
	res, err := s.recommendations.InsertOne(ctx, doc)
	return res, logFailure(ctx, "create recommendation", err)
}

func (s *Service) DeleteRecommendation(ctx context.Context, id string) (*domain.DeleteResult, error) {
	res, err := s.recommendations.DeleteByID(ctx, id)
	return res, logFailure(ctx, "delete recommendation", err)
}

// logFailure records store errors and wraps them with the operation name.
func logFailure(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	logging.Ctx(ctx).Error().Err(err).Str("op", op).Msg("[service] store operation failed")
	return fmt.Errorf("%s: %w", op, err)
}
