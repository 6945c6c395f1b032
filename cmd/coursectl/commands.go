package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yishak-cs/course-recommender/internal/models"
)

func newAskCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Recommend courses for a natural-language request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appBuilder(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			agent, err := a.RequireAgent()
			if err != nil {
				return err
			}
			result, err := agent.Recommend(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newParseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Show the requirements extracted from a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if strings.TrimSpace(query) == "" {
				return errors.New("query cannot be empty")
			}

			a, err := appBuilder(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			agent, err := a.RequireAgent()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"query":        query,
				"requirements": agent.ParseQuery(cmd.Context(), query),
			})
		},
	}
}

func newSearchCommand(opts *options) *cobra.Command {
	var (
		attributes []string
		minARate   float64
		minGPA     float64
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search courses by attribute and grade floors",
		Long: `Search courses without the language model.

Examples:
  coursectl search --attribute "Comm B" --min-a-rate 60
  coursectl search --attribute "Comm A" --attribute "Comm B" --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			requirements := models.RequirementSet{RequiredAttributes: attributes}
			if cmd.Flags().Changed("min-a-rate") {
				requirements.MinARate = models.Float64(minARate)
			}
			if cmd.Flags().Changed("min-gpa") {
				requirements.MinGPA = models.Float64(minGPA)
			}
			requirements = requirements.Normalize()
			if err := requirements.Validate(); err != nil {
				return err
			}
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}

			a, err := appBuilder(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			courses := a.Matcher.Match(cmd.Context(), requirements, limit)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"count":   len(courses),
				"courses": courses,
			})
		},
	}

	cmd.Flags().StringSliceVarP(&attributes, "attribute", "a", nil, "required attribute (repeatable or comma separated)")
	cmd.Flags().Float64Var(&minARate, "min-a-rate", 0, "minimum A-rate percentage (0-100)")
	cmd.Flags().Float64Var(&minGPA, "min-gpa", 0, "minimum average GPA (0-4)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of courses (default from config)")

	return cmd
}

func newSubjectsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List catalog subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appBuilder(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			if a.Subjects == nil {
				return errors.New("the configured catalog cannot list subjects")
			}
			subjects := a.Subjects.ListSubjects(cmd.Context())
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"count":    len(subjects),
				"subjects": subjects,
			})
		},
	}
}
