package models

import "strings"

// CourseRecord represents a catalog entry
type CourseRecord struct {
	Subject     string   `json:"subject"`
	Number      string   `json:"number"`
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Credits     string   `json:"credits"`
	Description string   `json:"description"`
	Attributes  []string `json:"attributes"`
	Requisites  string   `json:"requisites,omitempty"`
}

// CourseCode joins a subject and catalog number, e.g. "COMP SCI 200"
func CourseCode(subject, number string) string {
	return strings.TrimSpace(subject) + " " + strings.TrimSpace(number)
}

// NewCourseRecord builds a record with its derived code filled in
func NewCourseRecord(subject, number, title, credits, description string, attributes ...string) CourseRecord {
	if credits == "" {
		credits = "Variable"
	}
	if attributes == nil {
		attributes = []string{}
	}
	return CourseRecord{
		Subject:     strings.TrimSpace(subject),
		Number:      strings.TrimSpace(number),
		Code:        CourseCode(subject, number),
		Title:       strings.TrimSpace(title),
		Credits:     credits,
		Description: strings.TrimSpace(description),
		Attributes:  attributes,
	}
}

// HasAttribute reports whether the course carries the given tag (case-insensitive)
func (c CourseRecord) HasAttribute(attribute string) bool {
	for _, a := range c.Attributes {
		if strings.EqualFold(a, attribute) {
			return true
		}
	}
	return false
}

// HasAnyAttribute reports whether the course shares at least one tag with
// attributes. An empty attribute set matches every course.
func (c CourseRecord) HasAnyAttribute(attributes []string) bool {
	if len(attributes) == 0 {
		return true
	}
	for _, a := range attributes {
		if c.HasAttribute(a) {
			return true
		}
	}
	return false
}

// GradeRecord summarizes the grade distribution of one course. ARate and GPA
// are nil whenever Available is false.
type GradeRecord struct {
	CourseCode string   `json:"course_code"`
	ARate      *float64 `json:"a_rate"`
	GPA        *float64 `json:"gpa"`
	Available  bool     `json:"available"`
	SourceURL  string   `json:"url,omitempty"`
	Note       string   `json:"note,omitempty"`
}

// UnavailableGrades returns the record used when no data can be obtained
func UnavailableGrades(courseCode string) GradeRecord {
	return GradeRecord{
		CourseCode: courseCode,
		Available:  false,
		Note:       "Grade data not available",
	}
}

// KnownARate returns the A-rate only when it is actually known
func (g GradeRecord) KnownARate() (float64, bool) {
	if !g.Available || g.ARate == nil {
		return 0, false
	}
	return *g.ARate, true
}

// KnownGPA returns the GPA only when it is actually known
func (g GradeRecord) KnownGPA() (float64, bool) {
	if !g.Available || g.GPA == nil {
		return 0, false
	}
	return *g.GPA, true
}

// EnrichedCourse is a catalog entry with its grade data attached
type EnrichedCourse struct {
	CourseRecord
	GradeData GradeRecord `json:"grade_data"`
}
