package services

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yishak-cs/course-recommender/internal/catalog"
	"github.com/yishak-cs/course-recommender/internal/grades"
	"github.com/yishak-cs/course-recommender/internal/metrics"
	"github.com/yishak-cs/course-recommender/internal/models"
)

// DefaultLimit is the result size used when a caller passes no limit
const DefaultLimit = 20

// Matcher filters catalog entries against a RequirementSet and ranks them by
// A-rate
type Matcher struct {
	catalog      catalog.Source
	grades       grades.Source
	defaultLimit int
	workers      int
	logger       *zap.Logger
}

// NewMatcher creates a matcher. defaultLimit and workers fall back to
// DefaultLimit and 1 when not positive.
func NewMatcher(catalogSource catalog.Source, gradeSource grades.Source, defaultLimit, workers int, logger *zap.Logger) *Matcher {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if workers <= 0 {
		workers = 1
	}
	return &Matcher{
		catalog:      catalogSource,
		grades:       gradeSource,
		defaultLimit: defaultLimit,
		workers:      workers,
		logger:       logger.With(zap.String("component", "matcher")),
	}
}

// Match returns at most limit courses satisfying requirements, best A-rate
// first. A non-positive limit uses the matcher's default.
func (m *Matcher) Match(ctx context.Context, requirements models.RequirementSet, limit int) []models.EnrichedCourse {
	if limit <= 0 {
		limit = m.defaultLimit
	}

	// 1. Candidates
	candidates := m.catalog.ListByAttributes(ctx, requirements.RequiredAttributes)
	filtered := make([]models.CourseRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.HasAnyAttribute(requirements.RequiredAttributes) {
			filtered = append(filtered, c)
		}
	}

	// 2. Enrich
	enriched := m.enrich(ctx, filtered)

	// 3. Grade thresholds
	matched := make([]models.EnrichedCourse, 0, len(enriched))
	for _, course := range enriched {
		if meetsGradeRequirements(course.GradeData, requirements) {
			matched = append(matched, course)
		}
	}

	// 4. Rank
	SortByARate(matched)

	// 5. Truncate
	if len(matched) > limit {
		matched = matched[:limit]
	}

	metrics.MatchResultSize.Observe(float64(len(matched)))
	m.logger.Debug("matched courses",
		zap.Strings("attributes", requirements.RequiredAttributes),
		zap.Int("candidates", len(filtered)),
		zap.Int("returned", len(matched)),
	)
	return matched
}

// enrich looks up grades concurrently; results keep candidate order
func (m *Matcher) enrich(ctx context.Context, courses []models.CourseRecord) []models.EnrichedCourse {
	enriched := make([]models.EnrichedCourse, len(courses))

	var eg errgroup.Group
	eg.SetLimit(m.workers)
	for i, course := range courses {
		eg.Go(func() error {
			enriched[i] = models.EnrichedCourse{
				CourseRecord: course,
				GradeData:    m.grades.Lookup(ctx, course.Code),
			}
			return nil
		})
	}
	_ = eg.Wait()

	return enriched
}

// meetsGradeRequirements applies the A-rate and GPA floors. A course whose
// figure is unknown never satisfies a floor.
func meetsGradeRequirements(g models.GradeRecord, requirements models.RequirementSet) bool {
	if requirements.MinARate != nil {
		aRate, ok := g.KnownARate()
		if !ok || aRate < *requirements.MinARate {
			return false
		}
	}
	if requirements.MinGPA != nil {
		gpa, ok := g.KnownGPA()
		if !ok || gpa < *requirements.MinGPA {
			return false
		}
	}
	return true
}

// SortByARate orders courses by known A-rate descending, unknown A-rates
// last, ties broken by course code ascending
func SortByARate(courses []models.EnrichedCourse) {
	sort.SliceStable(courses, func(i, j int) bool {
		a, aOK := courses[i].GradeData.KnownARate()
		b, bOK := courses[j].GradeData.KnownARate()
		switch {
		case aOK && !bOK:
			return true
		case !aOK && bOK:
			return false
		case aOK && bOK && a != b:
			return a > b
		default:
			return courses[i].Code < courses[j].Code
		}
	})
}
