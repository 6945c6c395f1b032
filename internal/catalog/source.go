// Package catalog provides course catalog sources. Every source fails soft:
// lookup errors are logged and reported as an empty result.
package catalog

import (
	"context"

	"github.com/yishak-cs/course-recommender/internal/models"
)

// Source returns catalog entries
type Source interface {
	// ListByAttributes returns courses carrying at least one of attributes.
	// An empty set returns the source's default, unfiltered listing.
	ListByAttributes(ctx context.Context, attributes []string) []models.CourseRecord
	// ListBySubject returns every course of one subject
	ListBySubject(ctx context.Context, subject string) []models.CourseRecord
}

// Subject is one subject area of the catalog
type Subject struct {
	Code string `json:"code"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// SubjectLister is implemented by sources able to enumerate subjects
type SubjectLister interface {
	ListSubjects(ctx context.Context) []Subject
}

func filterByAttributes(courses []models.CourseRecord, attributes []string) []models.CourseRecord {
	if len(attributes) == 0 {
		return courses
	}
	filtered := make([]models.CourseRecord, 0, len(courses))
	for _, c := range courses {
		if c.HasAnyAttribute(attributes) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
