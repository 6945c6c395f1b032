package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/llm"
	"github.com/yishak-cs/course-recommender/internal/models"
	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
)

// RecommendationService is the course recommendation agent: request parsing,
// matching and composition behind one object
type RecommendationService struct {
	parser   *RequestParser
	matcher  *Matcher
	composer *Composer
	logger   *zap.Logger
}

// ModelOptions tunes the two model calls
type ModelOptions struct {
	ParseMaxTokens   int64
	ComposeMaxTokens int64
}

// NewRecommendationService creates the agent. It requires a model client;
// without one it returns ErrConfiguration and callers run in degraded mode.
func NewRecommendationService(model llm.Completer, matcher *Matcher, opts ModelOptions, logger *zap.Logger) (*RecommendationService, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: language model client not configured", apperrors.ErrConfiguration)
	}
	if matcher == nil {
		return nil, fmt.Errorf("%w: matcher not configured", apperrors.ErrConfiguration)
	}
	return &RecommendationService{
		parser:   NewRequestParser(model, opts.ParseMaxTokens, logger),
		matcher:  matcher,
		composer: NewComposer(model, opts.ComposeMaxTokens, logger),
		logger:   logger.With(zap.String("component", "agent")),
	}, nil
}

// Recommend runs the whole pipeline for one query
func (s *RecommendationService) Recommend(ctx context.Context, query string) (*models.RecommendationResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", apperrors.ErrValidation)
	}

	requirements := s.parser.Parse(ctx, query)
	courses := s.matcher.Match(ctx, requirements, 0)
	recommendation := s.composer.Compose(ctx, query, requirements, courses)

	s.logger.Info("generated recommendation",
		zap.Strings("attributes", requirements.RequiredAttributes),
		zap.Int("courses", len(courses)),
	)

	return &models.RecommendationResult{
		Query:          query,
		Requirements:   requirements,
		Courses:        courses,
		Recommendation: recommendation,
	}, nil
}

// ParseQuery interprets a query without matching
func (s *RecommendationService) ParseQuery(ctx context.Context, query string) models.RequirementSet {
	return s.parser.Parse(ctx, query)
}

// Search matches explicit requirements
func (s *RecommendationService) Search(ctx context.Context, requirements models.RequirementSet, limit int) []models.EnrichedCourse {
	return s.matcher.Match(ctx, requirements, limit)
}
