package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFallbackParseCommB(t *testing.T) {
	queries := []string{
		"I need a Comm B class",
		"any COMM B course please",
		"looking for communication b",
		"Communication B with easy grading",
		"comm bio stuff",
	}
	for _, q := range queries {
		req := FallbackParse(q)
		assert.Contains(t, req.RequiredAttributes, "Comm B", q)
		assert.Equal(t, q, req.Summary)
	}
}

func TestFallbackParseCommA(t *testing.T) {
	req := FallbackParse("something for Communication A")
	assert.Equal(t, []string{"Comm A"}, req.RequiredAttributes)

	both := FallbackParse("comm a or comm b")
	assert.Equal(t, []string{"Comm B", "Comm A"}, both.RequiredAttributes)
}

func TestFallbackParseARate(t *testing.T) {
	for _, n := range []int{0, 5, 42, 60, 100} {
		for _, form := range []string{"above %d%% A rate", "at least %d%% a rate", "%d A RATE or better", "%d%%a rate"} {
			q := fmt.Sprintf(form, n)
			req := FallbackParse(q)
			require.NotNil(t, req.MinARate, q)
			assert.Equal(t, float64(n), *req.MinARate, q)
		}
	}
}

func TestFallbackParseDefaults(t *testing.T) {
	req := FallbackParse("something interesting")
	assert.Empty(t, req.RequiredAttributes)
	assert.NotNil(t, req.RequiredAttributes)
	assert.Nil(t, req.MinARate)
	assert.Nil(t, req.MinGPA)
	assert.Empty(t, req.PreferredSubjects)
	assert.Empty(t, req.Keywords)
	assert.Equal(t, "something interesting", req.Summary)
}

func TestFallbackParseRejectsImpossibleRate(t *testing.T) {
	req := FallbackParse("150% A rate")
	assert.Nil(t, req.MinARate)
}

func TestFallbackParseExtraAttributes(t *testing.T) {
	req := FallbackParse("a Natural Science or humanities course")
	assert.Equal(t, []string{"Natural Science", "Humanities"}, req.RequiredAttributes)
}

func TestExtractStructuredBlock(t *testing.T) {
	block, err := ExtractStructuredBlock("Here you go:\n```json\n{\"a\": 1}\n```\nanything else?")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, block)

	block, err = ExtractStructuredBlock("```\n{\"b\": {\"nested\": true}}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"b": {"nested": true}}`, block)

	block, err = ExtractStructuredBlock("  {\"bare\": true}  ")
	require.NoError(t, err)
	assert.Equal(t, `{"bare": true}`, block)

	_, err = ExtractStructuredBlock("```json\n{}\n```\nor maybe\n```json\n{}\n```")
	assert.ErrorIs(t, err, errMultipleBlocks)

	_, err = ExtractStructuredBlock("Sure! The answer is {\"a\": 1} I think")
	assert.ErrorIs(t, err, errNoBlock)

	_, err = ExtractStructuredBlock("I cannot help with that.")
	assert.ErrorIs(t, err, errNoBlock)
}

const validModelResponse = "```json\n" + `{
  "attributes": ["Comm B", " comm b ", "Natural Science"],
  "min_a_rate": 60,
  "min_gpa": null,
  "subjects": ["computer science"],
  "keywords": ["writing"],
  "summary": "Comm B course with at least a 60% A rate"
}` + "\n```"

func TestParseModelRequirements(t *testing.T) {
	req, err := ParseModelRequirements(validModelResponse)
	require.NoError(t, err)
	assert.Equal(t, []string{"Comm B", "Natural Science"}, req.RequiredAttributes)
	require.NotNil(t, req.MinARate)
	assert.Equal(t, 60.0, *req.MinARate)
	assert.Nil(t, req.MinGPA)
	assert.Equal(t, []string{"computer science"}, req.PreferredSubjects)
	assert.Equal(t, []string{"writing"}, req.Keywords)
	assert.Equal(t, "Comm B course with at least a 60% A rate", req.Summary)
}

func TestParseModelRequirementsRejectsSchemaMismatch(t *testing.T) {
	cases := map[string]string{
		"missing field":  `{"attributes": [], "min_a_rate": null, "min_gpa": null, "subjects": [], "keywords": []}`,
		"extra field":    `{"attributes": [], "min_a_rate": null, "min_gpa": null, "subjects": [], "keywords": [], "summary": "", "mood": "happy"}`,
		"wrong type":     `{"attributes": "Comm B", "min_a_rate": null, "min_gpa": null, "subjects": [], "keywords": [], "summary": ""}`,
		"string number":  `{"attributes": [], "min_a_rate": "60", "min_gpa": null, "subjects": [], "keywords": [], "summary": ""}`,
		"rate above 100": `{"attributes": [], "min_a_rate": 120, "min_gpa": null, "subjects": [], "keywords": [], "summary": ""}`,
		"negative gpa":   `{"attributes": [], "min_a_rate": null, "min_gpa": -1, "subjects": [], "keywords": [], "summary": ""}`,
		"invalid json":   `{"attributes": [}`,
		"two objects":    `{"attributes": []} {"summary": ""}`,
	}
	for name, body := range cases {
		_, err := ParseModelRequirements(body)
		assert.ErrorIs(t, err, errSchema, name)
	}
}

func TestRequestParserUsesModel(t *testing.T) {
	model := &fakeModel{responses: []string{validModelResponse}}
	p := NewRequestParser(model, 512, zap.NewNop())

	req := p.Parse(context.Background(), "I need a Comm B class with above 60% A rate")
	assert.Equal(t, "Comm B course with at least a 60% A rate", req.Summary)
	assert.Equal(t, []string{"computer science"}, req.PreferredSubjects)
	require.Equal(t, 1, model.calls())
	assert.Contains(t, model.prompts[0], `"I need a Comm B class with above 60% A rate"`)
}

func TestRequestParserFallsBack(t *testing.T) {
	query := "I need a Comm B class with above 60% A rate"
	cases := map[string]*fakeModel{
		"model error":     {err: errors.New("overloaded")},
		"prose only":      {responses: []string{"Sure, you want a Comm B course."}},
		"schema mismatch": {responses: []string{"```json\n{\"attributes\": [\"Comm B\"]}\n```"}},
		"multiple blocks": {responses: []string{validModelResponse + "\n" + validModelResponse}},
	}

	for name, model := range cases {
		req := NewRequestParser(model, 512, zap.NewNop()).Parse(context.Background(), query)
		assert.Equal(t, []string{"Comm B"}, req.RequiredAttributes, name)
		require.NotNil(t, req.MinARate, name)
		assert.Equal(t, 60.0, *req.MinARate, name)
		assert.Equal(t, query, req.Summary, name)
	}

	req := NewRequestParser(nil, 512, zap.NewNop()).Parse(context.Background(), query)
	assert.Equal(t, []string{"Comm B"}, req.RequiredAttributes)
}
