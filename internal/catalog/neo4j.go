package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/metrics"
	"github.com/yishak-cs/course-recommender/internal/models"
)

// GraphReader runs read-only Cypher queries. *database.Neo4jClient implements it.
type GraphReader interface {
	ExecuteRead(ctx context.Context, query string, params map[string]interface{}) ([]map[string]interface{}, error)
}

const coursesByAttributesQuery = `
	MATCH (c:Course)
	OPTIONAL MATCH (c)-[:HAS_ATTRIBUTE]->(a:Attribute)
	WITH c, collect(a.name) AS attributes
	WHERE size($attributes) = 0
	   OR any(x IN attributes WHERE toLower(x) IN [y IN $attributes | toLower(y)])
	RETURN c.subject AS subject,
		   c.number AS number,
		   c.title AS title,
		   c.credits AS credits,
		   c.description AS description,
		   c.requisites AS requisites,
		   attributes
	ORDER BY subject, number
`

const coursesBySubjectQuery = `
	MATCH (c:Course)
	WHERE toLower(c.subject) = toLower($subject)
	OPTIONAL MATCH (c)-[:HAS_ATTRIBUTE]->(a:Attribute)
	WITH c, collect(a.name) AS attributes
	RETURN c.subject AS subject,
		   c.number AS number,
		   c.title AS title,
		   c.credits AS credits,
		   c.description AS description,
		   c.requisites AS requisites,
		   attributes
	ORDER BY number
`

const subjectsQuery = `
	MATCH (c:Course)
	RETURN DISTINCT c.subject AS subject
	ORDER BY subject
`

// Neo4j reads courses from a course graph maintained outside this service:
// (:Course {subject, number, title, credits, description, requisites})
// -[:HAS_ATTRIBUTE]->(:Attribute {name})
type Neo4j struct {
	reader GraphReader
	logger *zap.Logger
}

// NewNeo4j creates a graph backed catalog
func NewNeo4j(reader GraphReader, logger *zap.Logger) *Neo4j {
	return &Neo4j{
		reader: reader,
		logger: logger.With(zap.String("component", "catalog.neo4j")),
	}
}

// ListByAttributes implements Source
func (n *Neo4j) ListByAttributes(ctx context.Context, attributes []string) []models.CourseRecord {
	if attributes == nil {
		attributes = []string{}
	}
	return n.query(ctx, coursesByAttributesQuery, map[string]interface{}{
		"attributes": attributes,
	})
}

// ListBySubject implements Source
func (n *Neo4j) ListBySubject(ctx context.Context, subject string) []models.CourseRecord {
	return n.query(ctx, coursesBySubjectQuery, map[string]interface{}{
		"subject": strings.TrimSpace(subject),
	})
}

// ListSubjects implements SubjectLister
func (n *Neo4j) ListSubjects(ctx context.Context) []Subject {
	results, err := n.reader.ExecuteRead(ctx, subjectsQuery, nil)
	if err != nil {
		metrics.RecordSourceFailure("neo4j")
		n.logger.Warn("failed to list subjects", zap.Error(err))
		return []Subject{}
	}

	subjects := []Subject{}
	for _, result := range results {
		code := stringValue(result["subject"])
		if code == "" {
			continue
		}
		subjects = append(subjects, Subject{Code: code, Name: code})
	}
	return subjects
}

func (n *Neo4j) query(ctx context.Context, query string, params map[string]interface{}) []models.CourseRecord {
	results, err := n.reader.ExecuteRead(ctx, query, params)
	if err != nil {
		metrics.RecordSourceFailure("neo4j")
		n.logger.Warn("failed to query courses", zap.Error(err))
		return []models.CourseRecord{}
	}

	courses := make([]models.CourseRecord, 0, len(results))
	for _, result := range results {
		course, err := courseFromRow(result)
		if err != nil {
			n.logger.Debug("skipping malformed course row", zap.Error(err))
			continue
		}
		courses = append(courses, course)
	}
	return courses
}

func courseFromRow(row map[string]interface{}) (models.CourseRecord, error) {
	subject := stringValue(row["subject"])
	number := stringValue(row["number"])
	if subject == "" || number == "" {
		return models.CourseRecord{}, fmt.Errorf("course row missing subject or number: %v", row)
	}

	var attributes []string
	if raw, ok := row["attributes"].([]interface{}); ok {
		for _, a := range raw {
			if s := stringValue(a); s != "" {
				attributes = append(attributes, s)
			}
		}
	}

	course := models.NewCourseRecord(
		subject,
		number,
		stringValue(row["title"]),
		stringValue(row["credits"]),
		stringValue(row["description"]),
		attributes...,
	)
	course.Requisites = stringValue(row["requisites"])
	return course, nil
}

// stringValue tolerates nulls and numeric properties (credits, number)
func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(t)
	}
}
