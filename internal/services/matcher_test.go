package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/catalog"
	"github.com/yishak-cs/course-recommender/internal/grades"
	"github.com/yishak-cs/course-recommender/internal/models"
)

func fixtureGrades() staticGrades {
	return staticGrades{
		"COMM ARTS 250":  available("COMM ARTS 250", 72.4, 3.3),
		"ENGLISH 100":    available("ENGLISH 100", 61.0, 3.1),
		"ENGLISH 205":    available("ENGLISH 205", 60.0, 3.08),
		"JOURNALISM 202": available("JOURNALISM 202", 61.0, 3.1),
		"COMP SCI 200":   available("COMP SCI 200", 35.5, 2.64),
		// PHILOS 241 has no record
		"COMM ARTS 155": available("COMM ARTS 155", 80.0, 3.44),
		"ART 101":       {CourseCode: "ART 101", Available: false},
	}
}

func codes(courses []models.EnrichedCourse) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Code
	}
	return out
}

func assertRanked(t *testing.T, courses []models.EnrichedCourse) {
	t.Helper()
	seenUnknown := false
	for i, c := range courses {
		rate, ok := c.GradeData.KnownARate()
		if !ok {
			seenUnknown = true
			continue
		}
		require.False(t, seenUnknown, "known A-rate after unknown at %d", i)
		if i > 0 {
			prev, _ := courses[i-1].GradeData.KnownARate()
			require.GreaterOrEqual(t, prev, rate)
		}
	}
}

func TestMatchFiltersByAttributeAndRanks(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(), fixtureGrades(), 20, 4, zap.NewNop())

	got := m.Match(context.Background(), models.RequirementSet{RequiredAttributes: []string{"Comm B"}}, 0)
	assert.Equal(t, []string{
		"COMM ARTS 250",
		"ENGLISH 100",
		"JOURNALISM 202",
		"ENGLISH 205",
		"COMP SCI 200",
		"PHILOS 241",
	}, codes(got))
	assertRanked(t, got)
	for _, c := range got {
		assert.True(t, c.HasAttribute("Comm B"))
	}
}

func TestMatchEmptyAttributesReturnsEverything(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(), fixtureGrades(), 20, 4, zap.NewNop())

	got := m.Match(context.Background(), models.RequirementSet{}, 0)
	require.Len(t, got, len(catalog.SampleCourses()))
	assert.Equal(t, "COMM ARTS 155", got[0].Code)
	// unavailable grades last, by code
	assert.Equal(t, []string{"ART 101", "PHILOS 241"}, codes(got[len(got)-2:]))
	assertRanked(t, got)
}

func TestMatchMinARateExcludesUnknown(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(), fixtureGrades(), 20, 4, zap.NewNop())

	req := models.RequirementSet{MinARate: models.Float64(60)}
	got := m.Match(context.Background(), req, 0)
	assert.Equal(t, []string{"COMM ARTS 155", "COMM ARTS 250", "ENGLISH 100", "JOURNALISM 202", "ENGLISH 205"}, codes(got))
	for _, c := range got {
		require.True(t, c.GradeData.Available)
		rate, ok := c.GradeData.KnownARate()
		require.True(t, ok)
		assert.GreaterOrEqual(t, rate, 60.0)
	}

	zero := m.Match(context.Background(), models.RequirementSet{MinARate: models.Float64(0)}, 0)
	assert.NotContains(t, codes(zero), "PHILOS 241")
	assert.NotContains(t, codes(zero), "ART 101")
}

func TestMatchMinGPA(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(), fixtureGrades(), 20, 4, zap.NewNop())

	got := m.Match(context.Background(), models.RequirementSet{MinGPA: models.Float64(3.1)}, 0)
	assert.Equal(t, []string{"COMM ARTS 155", "COMM ARTS 250", "ENGLISH 100", "JOURNALISM 202"}, codes(got))
}

func TestMatchLimit(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(), fixtureGrades(), 3, 2, zap.NewNop())

	assert.Len(t, m.Match(context.Background(), models.RequirementSet{}, 0), 3)
	assert.Len(t, m.Match(context.Background(), models.RequirementSet{}, 1), 1)
	assert.Len(t, m.Match(context.Background(), models.RequirementSet{}, 100), 8)

	for limit := 1; limit <= 10; limit++ {
		got := m.Match(context.Background(), models.RequirementSet{RequiredAttributes: []string{"Comm A"}}, limit)
		assert.LessOrEqual(t, len(got), limit)
		assert.LessOrEqual(t, len(got), 2)
	}
}

func TestMatchIsIdempotent(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(), grades.NewSynthetic(99), 20, 8, zap.NewNop())
	req := models.RequirementSet{RequiredAttributes: []string{"Comm B"}, MinARate: models.Float64(30)}

	first := m.Match(context.Background(), req, 0)
	second := m.Match(context.Background(), req, 0)
	assert.Equal(t, first, second)
	assertRanked(t, first)
}

func TestMatchEmptyCatalog(t *testing.T) {
	m := NewMatcher(catalog.NewFixture(models.NewCourseRecord("ASTRON", "103", "The Evolving Universe", "3", "")), fixtureGrades(), 20, 1, zap.NewNop())
	got := m.Match(context.Background(), models.RequirementSet{RequiredAttributes: []string{"Comm B"}}, 0)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSortByARateTieBreak(t *testing.T) {
	courses := []models.EnrichedCourse{
		{CourseRecord: models.CourseRecord{Code: "B 1"}, GradeData: available("B 1", 50, 3)},
		{CourseRecord: models.CourseRecord{Code: "C 1"}, GradeData: models.UnavailableGrades("C 1")},
		{CourseRecord: models.CourseRecord{Code: "A 1"}, GradeData: available("A 1", 50, 3)},
		{CourseRecord: models.CourseRecord{Code: "A 2"}, GradeData: models.UnavailableGrades("A 2")},
		{CourseRecord: models.CourseRecord{Code: "D 1"}, GradeData: available("D 1", 70, 3)},
	}
	SortByARate(courses)
	assert.Equal(t, []string{"D 1", "A 1", "B 1", "A 2", "C 1"}, codes(courses))
}
