// Package app wires configuration into the catalog, grade, matcher and agent
// components shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/catalog"
	"github.com/yishak-cs/course-recommender/internal/database"
	"github.com/yishak-cs/course-recommender/internal/grades"
	"github.com/yishak-cs/course-recommender/internal/handlers"
	"github.com/yishak-cs/course-recommender/internal/llm"
	"github.com/yishak-cs/course-recommender/internal/middleware"
	"github.com/yishak-cs/course-recommender/internal/services"
	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
	"github.com/yishak-cs/course-recommender/pkg/helper"
)

// App holds the wired components
type App struct {
	Config   *helper.Config
	Logger   *zap.Logger
	Catalog  catalog.Source
	Subjects catalog.SubjectLister // nil when the catalog cannot list subjects
	Grades   grades.Source
	Matcher  *services.Matcher
	Agent    *services.RecommendationService // nil in degraded mode
	AgentErr error

	neo4j *database.Neo4jClient
}

// New builds every component from cfg. A missing or rejected model
// credential is not an error: the app starts in degraded mode and AgentErr
// records why.
func New(cfg *helper.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	source, err := a.newCatalog()
	if err != nil {
		return nil, err
	}
	a.Catalog = source
	if lister, ok := source.(catalog.SubjectLister); ok {
		a.Subjects = lister
	}

	a.Grades = a.newGrades()
	a.Matcher = services.NewMatcher(a.Catalog, a.Grades, cfg.Matcher.DefaultLimit, cfg.Matcher.Workers, logger)

	a.Agent, a.AgentErr = a.newAgent()
	if a.AgentErr != nil {
		logger.Warn("recommendation agent not initialized, running in degraded mode", zap.Error(a.AgentErr))
	} else {
		logger.Info("recommendation agent initialized", zap.String("model", cfg.Anthropic.Model))
	}

	return a, nil
}

func (a *App) newCatalog() (catalog.Source, error) {
	switch a.Config.Catalog.Source {
	case helper.CatalogGuide:
		return catalog.NewGuide(a.Config.Catalog.BaseURL, a.Config.Catalog.Subjects, a.Config.Catalog.HTTPTimeout, a.Logger), nil
	case helper.CatalogNeo4j:
		client, err := database.NewNeo4jClient(a.Config.Neo4j.DriverConfig(), a.Logger)
		if err != nil {
			return nil, err
		}
		a.neo4j = client
		return catalog.NewNeo4j(client, a.Logger), nil
	default:
		return catalog.NewFixture(), nil
	}
}

func (a *App) newAgent() (*services.RecommendationService, error) {
	if !a.Config.AgentEnabled() {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", apperrors.ErrConfiguration)
	}
	model, err := llm.NewAnthropic(llm.AnthropicOptions{
		APIKey:  a.Config.Anthropic.APIKey,
		Model:   a.Config.Anthropic.Model,
		Timeout: a.Config.Anthropic.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return services.NewRecommendationService(model, a.Matcher, services.ModelOptions{
		ParseMaxTokens:   a.Config.Anthropic.ParseMaxTokens,
		ComposeMaxTokens: a.Config.Anthropic.ComposeMaxTokens,
	}, a.Logger)
}

// a negative seed draws fresh synthetic values on every lookup
func (a *App) newGrades() grades.Source {
	switch a.Config.Grades.Source {
	case helper.GradesMadGrades:
		return grades.NewMadGrades(a.Config.Grades.BaseURL, a.Config.Grades.HTTPTimeout, a.Logger)
	default:
		if a.Config.Grades.Seed < 0 {
			return grades.NewRandomSynthetic()
		}
		return grades.NewSynthetic(a.Config.Grades.Seed)
	}
}

// AgentReady reports whether natural-language requests can be served
func (a *App) AgentReady() bool {
	return a.Agent != nil
}

// RequireAgent returns the agent or the reason it is unavailable
func (a *App) RequireAgent() (*services.RecommendationService, error) {
	if a.Agent == nil {
		if a.AgentErr != nil {
			return nil, a.AgentErr
		}
		return nil, errors.New("recommendation agent not initialized")
	}
	return a.Agent, nil
}

// Router builds the HTTP handler with middleware, API routes and /metrics
func (a *App) Router() *gin.Engine {
	router := gin.New()
	// Recovery stays outermost
	router.Use(
		handlers.Recovery(a.Logger),
		middleware.RequestID(),
		middleware.Logger(a.Logger),
		middleware.Metrics(),
		middleware.CORS(a.Config.Server.AllowOrigins),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var agent handlers.Agent
	if a.Agent != nil {
		agent = a.Agent
	}
	handlers.NewAPIHandler(agent, a.Matcher, a.Subjects, a.Logger).SetupRoutes(router)

	return router
}

// Close releases external connections
func (a *App) Close(ctx context.Context) error {
	if a.neo4j != nil {
		return a.neo4j.Close(ctx)
	}
	return nil
}
