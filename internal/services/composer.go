package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/llm"
	"github.com/yishak-cs/course-recommender/internal/metrics"
	"github.com/yishak-cs/course-recommender/internal/models"
)

// courses summarized in the prompt
const composeCourseLimit = 10

const composePromptTemplate = `You are a friendly academic advisor for UW-Madison students.

Student's request: %q

Parsed requirements: %s

Matching courses found:
%s

Provide a helpful, encouraging response that:
1. Acknowledges their requirements
2. Recommends the top 3-5 courses from the list
3. Explains why each course is a good fit
4. Provides any helpful tips about these courses

Keep your response conversational and supportive!`

// Composer writes the human-readable recommendation
type Composer struct {
	model     llm.Completer
	maxTokens int64
	logger    *zap.Logger
}

// NewComposer creates a composer. A nil model always uses the fallback text.
func NewComposer(model llm.Completer, maxTokens int64, logger *zap.Logger) *Composer {
	return &Composer{
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.With(zap.String("component", "composer")),
	}
}

// Compose explains the ranked courses. A single model attempt is made; on
// any failure the templated summary is returned.
func (c *Composer) Compose(ctx context.Context, query string, requirements models.RequirementSet, courses []models.EnrichedCourse) string {
	if c.model == nil {
		return c.fallback(courses, "no_model", nil)
	}

	prompt, err := BuildComposePrompt(query, requirements, courses)
	if err != nil {
		return c.fallback(courses, "prompt", err)
	}

	text, err := c.model.Complete(ctx, llm.Request{Prompt: prompt, MaxTokens: c.maxTokens})
	if err != nil {
		return c.fallback(courses, "model_error", err)
	}
	if strings.TrimSpace(text) == "" {
		return c.fallback(courses, "empty", nil)
	}
	return text
}

func (c *Composer) fallback(courses []models.EnrichedCourse, reason string, err error) string {
	metrics.ComposerFallbacks.WithLabelValues(reason).Inc()
	c.logger.Warn("using templated recommendation", zap.String("reason", reason), zap.Error(err))
	return FallbackRecommendation(len(courses))
}

// FallbackRecommendation is the text used when the model is unavailable
func FallbackRecommendation(count int) string {
	return fmt.Sprintf("I found %d courses matching your criteria. Check out the list below!", count)
}

// BuildComposePrompt renders the advisor prompt
func BuildComposePrompt(query string, requirements models.RequirementSet, courses []models.EnrichedCourse) (string, error) {
	requirementsJSON, err := json.MarshalIndent(requirements, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode requirements: %w", err)
	}
	return fmt.Sprintf(composePromptTemplate, query, requirementsJSON, SummarizeCourses(courses)), nil
}

// SummarizeCourses renders up to ten courses, one per line
func SummarizeCourses(courses []models.EnrichedCourse) string {
	if len(courses) > composeCourseLimit {
		courses = courses[:composeCourseLimit]
	}

	lines := make([]string, 0, len(courses))
	for _, c := range courses {
		aRate := "N/A"
		if v, ok := c.GradeData.KnownARate(); ok {
			aRate = fmt.Sprintf("%g", v)
		}
		gpa := "N/A"
		if v, ok := c.GradeData.KnownGPA(); ok {
			gpa = fmt.Sprintf("%g", v)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (A Rate: %s%%, GPA: %s)", c.Code, c.Title, aRate, gpa))
	}
	return strings.Join(lines, "\n")
}
