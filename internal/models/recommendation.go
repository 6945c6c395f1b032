package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
)

var validate = validator.New()

// RequirementSet is the structured interpretation of a student's request
type RequirementSet struct {
	RequiredAttributes []string `json:"attributes"`
	MinARate           *float64 `json:"min_a_rate" validate:"omitempty,gte=0,lte=100"`
	MinGPA             *float64 `json:"min_gpa" validate:"omitempty,gte=0,lte=4"`
	PreferredSubjects  []string `json:"subjects"`
	Keywords           []string `json:"keywords"`
	Summary            string   `json:"summary"`
}

// Validate checks the numeric bounds of the requirement set
func (r RequirementSet) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: requirements out of range: %w", apperrors.ErrValidation, err)
	}
	return nil
}

// Normalize returns a copy with trimmed, deduplicated string lists and
// non-nil slices so the set always serializes as arrays.
func (r RequirementSet) Normalize() RequirementSet {
	return RequirementSet{
		RequiredAttributes: uniqueStrings(r.RequiredAttributes),
		MinARate:           r.MinARate,
		MinGPA:             r.MinGPA,
		PreferredSubjects:  uniqueStrings(r.PreferredSubjects),
		Keywords:           uniqueStrings(r.Keywords),
		Summary:            strings.TrimSpace(r.Summary),
	}
}

// RecommendationResult is the final bundle returned for a query
type RecommendationResult struct {
	Query          string           `json:"query"`
	Requirements   RequirementSet   `json:"requirements"`
	Courses        []EnrichedCourse `json:"courses"`
	Recommendation string           `json:"recommendation"`
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}

func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
