// Package grades provides grade-distribution sources. Lookups never fail:
// missing data is reported as an unavailable record.
package grades

import (
	"context"
	"strings"

	"github.com/yishak-cs/course-recommender/internal/models"
)

const DefaultMadGradesURL = "https://madgrades.com"

// Source returns the grade summary of one course
type Source interface {
	Lookup(ctx context.Context, courseCode string) models.GradeRecord
}

// CourseSlug converts a course code to the MadGrades path segment,
// e.g. "COMP SCI 200" -> "comp-sci-200"
func CourseSlug(courseCode string) string {
	return strings.ToLower(strings.Join(strings.Fields(courseCode), "-"))
}

// CourseURL returns the MadGrades page of a course
func CourseURL(baseURL, courseCode string) string {
	return strings.TrimSuffix(baseURL, "/") + "/courses/" + CourseSlug(courseCode)
}
