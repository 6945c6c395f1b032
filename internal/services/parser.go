package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/llm"
	"github.com/yishak-cs/course-recommender/internal/metrics"
	"github.com/yishak-cs/course-recommender/internal/models"
)

const requirementsSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": false,
	"required": ["attributes", "min_a_rate", "min_gpa", "subjects", "keywords", "summary"],
	"properties": {
		"attributes": {"type": "array", "items": {"type": "string"}},
		"min_a_rate": {"type": ["number", "null"], "minimum": 0, "maximum": 100},
		"min_gpa": {"type": ["number", "null"], "minimum": 0, "maximum": 4},
		"subjects": {"type": "array", "items": {"type": "string"}},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"summary": {"type": "string"}
	}
}`

const parsePromptTemplate = `You are a course recommendation assistant for UW-Madison students.
Parse the following student request and extract:
1. Required course attributes (e.g., "Comm B", "Comm A", "Natural Science")
2. Grade requirements (e.g., "above 60%% A rate", "high GPA")
3. Subject preferences (e.g., "computer science", "history")
4. Any other specific requirements

Student request: %q

Respond with exactly one fenced json code block and nothing else. The object
must have exactly these fields:
` + "```json" + `
{
    "attributes": ["list of required attributes"],
    "min_a_rate": <number from 0 to 100 or null>,
    "min_gpa": <number from 0.0 to 4.0 or null>,
    "subjects": ["list of preferred subjects"],
    "keywords": ["other relevant keywords"],
    "summary": "brief summary of requirements"
}
` + "```"

var (
	errNoBlock        = errors.New("no structured block in model response")
	errMultipleBlocks = errors.New("multiple structured blocks in model response")
	errSchema         = errors.New("model response does not match the requirements schema")

	fencedBlockPattern = regexp.MustCompile("(?s)```[ \\t]*(?:json|JSON)?[ \\t]*\\r?\\n(.*?)```")
	aRatePattern       = regexp.MustCompile(`(?i)(\d+)%?\s*a\s*rate`)

	requirementsSchema = mustCompileSchema(requirementsSchemaJSON, "requirements.schema.json")
)

// phrases recognized by the rule-based extractor, matched case-insensitively
var attributePhrases = []struct {
	tag     string
	phrases []string
}{
	{"Comm B", []string{"comm b", "communication b"}},
	{"Comm A", []string{"comm a", "communication a"}},
	{"Ethnic Studies", []string{"ethnic studies"}},
	{"Natural Science", []string{"natural science"}},
	{"Social Science", []string{"social science"}},
	{"Humanities", []string{"humanities"}},
}

func mustCompileSchema(raw, name string) *jsonschema.Schema {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return schema
}

// RequestParser turns free text into a RequirementSet. It never fails: any
// model problem falls back to the rule-based extractor.
type RequestParser struct {
	model     llm.Completer
	maxTokens int64
	logger    *zap.Logger
}

// NewRequestParser creates a parser. A nil model always uses the fallback.
func NewRequestParser(model llm.Completer, maxTokens int64, logger *zap.Logger) *RequestParser {
	return &RequestParser{
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.With(zap.String("component", "parser")),
	}
}

// Parse interprets query
func (p *RequestParser) Parse(ctx context.Context, query string) models.RequirementSet {
	if p.model == nil {
		return p.fallback(query, "no_model", nil)
	}

	text, err := p.model.Complete(ctx, llm.Request{
		Prompt:    BuildParsePrompt(query),
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return p.fallback(query, "model_error", err)
	}

	requirements, err := ParseModelRequirements(text)
	if err != nil {
		return p.fallback(query, fallbackReason(err), err)
	}
	return requirements
}

func (p *RequestParser) fallback(query, reason string, err error) models.RequirementSet {
	metrics.ParserFallbacks.WithLabelValues(reason).Inc()
	p.logger.Warn("using rule-based request parsing", zap.String("reason", reason), zap.Error(err))
	return FallbackParse(query)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errNoBlock), errors.Is(err, errMultipleBlocks):
		return "no_block"
	case errors.Is(err, errSchema):
		return "schema"
	default:
		return "bounds"
	}
}

// BuildParsePrompt renders the instruction sent to the model
func BuildParsePrompt(query string) string {
	return fmt.Sprintf(parsePromptTemplate, query)
}

// ExtractStructuredBlock returns the single JSON object in a model response.
// The response must hold exactly one fenced code block, or be a bare object.
func ExtractStructuredBlock(text string) (string, error) {
	trimmed := strings.TrimSpace(text)

	blocks := fencedBlockPattern.FindAllStringSubmatch(trimmed, -1)
	switch len(blocks) {
	case 0:
	case 1:
		return strings.TrimSpace(blocks[0][1]), nil
	default:
		return "", errMultipleBlocks
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, nil
	}
	return "", errNoBlock
}

// ParseModelRequirements validates a model response against the requirements
// contract and decodes it. Any mismatch is an error.
func ParseModelRequirements(text string) (models.RequirementSet, error) {
	block, err := ExtractStructuredBlock(text)
	if err != nil {
		return models.RequirementSet{}, err
	}

	var doc any
	if err := json.Unmarshal([]byte(block), &doc); err != nil {
		return models.RequirementSet{}, fmt.Errorf("%w: %v", errSchema, err)
	}
	if err := requirementsSchema.Validate(doc); err != nil {
		return models.RequirementSet{}, fmt.Errorf("%w: %v", errSchema, err)
	}

	var requirements models.RequirementSet
	if err := json.Unmarshal([]byte(block), &requirements); err != nil {
		return models.RequirementSet{}, fmt.Errorf("%w: %v", errSchema, err)
	}

	requirements = requirements.Normalize()
	if err := requirements.Validate(); err != nil {
		return models.RequirementSet{}, err
	}
	return requirements, nil
}

// FallbackParse is the deterministic rule-based extractor
func FallbackParse(query string) models.RequirementSet {
	lower := strings.ToLower(query)

	attributes := []string{}
	for _, attr := range attributePhrases {
		for _, phrase := range attr.phrases {
			if strings.Contains(lower, phrase) {
				attributes = append(attributes, attr.tag)
				break
			}
		}
	}

	var minARate *float64
	if m := aRatePattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n <= 100 {
			minARate = models.Float64(float64(n))
		}
	}

	return models.RequirementSet{
		RequiredAttributes: attributes,
		MinARate:           minARate,
		MinGPA:             nil,
		PreferredSubjects:  []string{},
		Keywords:           []string{},
		Summary:            query,
	}
}
