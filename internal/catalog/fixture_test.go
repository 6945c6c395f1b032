package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureListByAttributes(t *testing.T) {
	f := NewFixture()
	ctx := context.Background()

	all := f.ListByAttributes(ctx, nil)
	require.Len(t, all, 8)

	commB := f.ListByAttributes(ctx, []string{"Comm B"})
	require.Len(t, commB, 6)
	for _, c := range commB {
		assert.True(t, c.HasAttribute("Comm B"), c.Code)
	}

	either := f.ListByAttributes(ctx, []string{"comm a", "Comm B"})
	require.Len(t, either, 8)

	none := f.ListByAttributes(ctx, []string{"Natural Science"})
	require.Empty(t, none)
}

func TestFixtureListBySubject(t *testing.T) {
	f := NewFixture()

	english := f.ListBySubject(context.Background(), "english")
	require.Len(t, english, 2)
	assert.Equal(t, "ENGLISH 100", english[0].Code)
	assert.Equal(t, "ENGLISH 205", english[1].Code)

	require.Empty(t, f.ListBySubject(context.Background(), "ASTRON"))
}

func TestFixtureReturnsCopies(t *testing.T) {
	f := NewFixture()
	first := f.ListByAttributes(context.Background(), nil)
	first[0].Attributes[0] = "mutated"

	second := f.ListByAttributes(context.Background(), nil)
	assert.Equal(t, "Comm B", second[0].Attributes[0])
}

func TestFixtureCodesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range SampleCourses() {
		require.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true
		assert.Equal(t, c.Subject+" "+c.Number, c.Code)
	}
}

func TestFixtureListSubjects(t *testing.T) {
	subjects := NewFixture().ListSubjects(context.Background())
	codes := make([]string, 0, len(subjects))
	for _, s := range subjects {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"COMM ARTS", "ENGLISH", "JOURNALISM", "COMP SCI", "PHILOS", "ART"}, codes)
}
