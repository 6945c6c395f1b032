package catalog

import (
	"context"
	"strings"

	"github.com/yishak-cs/course-recommender/internal/models"
)

// Fixture is a static, in-memory catalog used for demos and tests
type Fixture struct {
	courses []models.CourseRecord
}

// NewFixture creates a catalog over the given courses. With no courses the
// built-in sample set is used.
func NewFixture(courses ...models.CourseRecord) *Fixture {
	if len(courses) == 0 {
		courses = SampleCourses()
	}
	return &Fixture{courses: courses}
}

// ListByAttributes implements Source
func (f *Fixture) ListByAttributes(_ context.Context, attributes []string) []models.CourseRecord {
	return cloneCourses(filterByAttributes(f.courses, attributes))
}

// ListBySubject implements Source
func (f *Fixture) ListBySubject(_ context.Context, subject string) []models.CourseRecord {
	var out []models.CourseRecord
	for _, c := range f.courses {
		if strings.EqualFold(c.Subject, strings.TrimSpace(subject)) {
			out = append(out, c)
		}
	}
	return cloneCourses(out)
}

// ListSubjects implements SubjectLister
func (f *Fixture) ListSubjects(_ context.Context) []Subject {
	var subjects []Subject
	seen := make(map[string]bool)
	for _, c := range f.courses {
		if seen[c.Subject] {
			continue
		}
		seen[c.Subject] = true
		subjects = append(subjects, Subject{Code: c.Subject, Name: c.Subject})
	}
	return subjects
}

func cloneCourses(courses []models.CourseRecord) []models.CourseRecord {
	out := make([]models.CourseRecord, len(courses))
	for i, c := range courses {
		c.Attributes = append([]string{}, c.Attributes...)
		out[i] = c
	}
	return out
}

// SampleCourses returns the demo catalog
func SampleCourses() []models.CourseRecord {
	return []models.CourseRecord{
		models.NewCourseRecord("COMM ARTS", "250", "Public Speaking", "3",
			"Introduction to public speaking with emphasis on speech preparation and delivery.", "Comm B"),
		models.NewCourseRecord("ENGLISH", "100", "Introduction to College Composition", "3",
			"Practice in reading, writing, and critical thinking.", "Comm B"),
		models.NewCourseRecord("ENGLISH", "205", "Technical Writing", "3",
			"Writing for technical and professional audiences.", "Comm B"),
		models.NewCourseRecord("JOURNALISM", "202", "Mass Media and Society", "3",
			"Introduction to mass media and its role in society.", "Comm B"),
		models.NewCourseRecord("COMP SCI", "200", "Programming I", "3",
			"Introduction to computer programming using Java.", "Comm B"),
		models.NewCourseRecord("PHILOS", "241", "Introductory Logic", "3",
			"Introduction to formal logic and reasoning.", "Comm B"),
		models.NewCourseRecord("COMM ARTS", "155", "Introduction to Media Production", "3",
			"Hands-on introduction to media production.", "Comm A"),
		models.NewCourseRecord("ART", "101", "Introduction to Art", "3",
			"Survey of art history and techniques.", "Comm A"),
	}
}
