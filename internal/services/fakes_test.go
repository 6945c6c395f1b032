package services

import (
	"context"
	"errors"
	"sync"

	"github.com/yishak-cs/course-recommender/internal/llm"
	"github.com/yishak-cs/course-recommender/internal/models"
)

// fakeModel returns scripted responses in order, repeating the last one
type fakeModel struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (f *fakeModel) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no scripted response")
	}
	idx := len(f.prompts) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// staticGrades serves fixed records; unknown codes are unavailable
type staticGrades map[string]models.GradeRecord

func (s staticGrades) Lookup(_ context.Context, code string) models.GradeRecord {
	if g, ok := s[code]; ok {
		return g
	}
	return models.UnavailableGrades(code)
}

func available(code string, aRate, gpa float64) models.GradeRecord {
	return models.GradeRecord{
		CourseCode: code,
		ARate:      models.Float64(aRate),
		GPA:        models.Float64(gpa),
		Available:  true,
	}
}
