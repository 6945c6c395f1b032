package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/catalog"
	"github.com/yishak-cs/course-recommender/internal/middleware"
	"github.com/yishak-cs/course-recommender/internal/models"
	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
)

const (
	msgAgentNotReady  = "Course recommendation agent not initialized. Check API key."
	msgMissingQuery   = `Missing "query" field in request`
	msgEmptyQuery     = "Query cannot be empty"
	msgRecommendError = "An error occurred while generating recommendations"
	msgNotFound       = "Endpoint not found"
	msgInternal       = "Internal server error"
)

// Agent is the recommendation pipeline served by the API
type Agent interface {
	Recommend(ctx context.Context, query string) (*models.RecommendationResult, error)
	ParseQuery(ctx context.Context, query string) models.RequirementSet
}

// CourseSearcher runs explicit searches without the language model
type CourseSearcher interface {
	Match(ctx context.Context, requirements models.RequirementSet, limit int) []models.EnrichedCourse
}

// APIHandler handles all API requests
type APIHandler struct {
	agent    Agent
	searcher CourseSearcher
	subjects catalog.SubjectLister
	logger   *zap.Logger
}

// NewAPIHandler creates a new API handler. A nil agent runs the API in
// degraded mode; a nil subject lister disables /api/subjects.
func NewAPIHandler(agent Agent, searcher CourseSearcher, subjects catalog.SubjectLister, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		agent:    agent,
		searcher: searcher,
		subjects: subjects,
		logger:   logger,
	}
}

type queryRequest struct {
	Query *string `json:"query"`
}

// SetupRoutes configures all API routes
func (h *APIHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", h.Health)
		api.POST("/recommend", h.Recommend)
		api.POST("/parse-query", h.ParseQuery)
		api.GET("/courses/search", h.SearchCourses)
		api.GET("/subjects", h.ListSubjects)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
	})
}

// Recovery turns panics into the generic 500 response
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Error(fmt.Errorf("%w: %v", apperrors.ErrInternal, recovered)),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	})
}

// Health reports liveness and whether the agent is usable
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"agentReady": h.agent != nil,
	})
}

// Recommend handles the full natural-language recommendation flow
func (h *APIHandler) Recommend(c *gin.Context) {
	query, ok := h.bindQuery(c, msgMissingQuery, msgEmptyQuery)
	if !ok {
		return
	}
	if h.agent == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAgentNotReady})
		return
	}

	result, err := h.agent.Recommend(c.Request.Context(), query)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgEmptyQuery})
			return
		}
		h.logger.Error("failed to generate recommendation", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgRecommendError})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"query":          result.Query,
		"requirements":   result.Requirements,
		"recommendation": result.Recommendation,
		"courses":        result.Courses,
	})
}

// ParseQuery returns the interpreted requirements without matching
func (h *APIHandler) ParseQuery(c *gin.Context) {
	query, ok := h.bindQuery(c, "Query is required", "Query is required")
	if !ok {
		return
	}
	if h.agent == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgAgentNotReady})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"query":        query,
		"requirements": h.agent.ParseQuery(c.Request.Context(), query),
	})
}

// SearchCourses matches explicit filters against the catalog
func (h *APIHandler) SearchCourses(c *gin.Context) {
	requirements, limit, err := searchParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	courses := h.searcher.Match(c.Request.Context(), requirements, limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(courses),
		"courses": courses,
	})
}

// ListSubjects lists catalog subjects when the source can enumerate them
func (h *APIHandler) ListSubjects(c *gin.Context) {
	if h.subjects == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Subject listing is not supported by the configured catalog"})
		return
	}

	subjects := h.subjects.ListSubjects(c.Request.Context())
	if subjects == nil {
		subjects = []catalog.Subject{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(subjects),
		"subjects": subjects,
	})
}

// bindQuery validates the {query} body; it writes the 400 itself
func (h *APIHandler) bindQuery(c *gin.Context, missingMsg, emptyMsg string) (string, bool) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingMsg})
		return "", false
	}
	if strings.TrimSpace(*req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": emptyMsg})
		return "", false
	}
	return *req.Query, true
}

// searchParams reads attributes (repeated or comma separated), the grade
// floors in camelCase or snake_case, and limit
func searchParams(c *gin.Context) (models.RequirementSet, int, error) {
	var attributes []string
	for _, raw := range c.QueryArray("attributes") {
		for _, attr := range strings.Split(raw, ",") {
			if attr = strings.TrimSpace(attr); attr != "" {
				attributes = append(attributes, attr)
			}
		}
	}

	minARate, err := floatParam(c, 100, "minARate", "min_a_rate")
	if err != nil {
		return models.RequirementSet{}, 0, err
	}
	minGPA, err := floatParam(c, 4, "minGPA", "min_gpa")
	if err != nil {
		return models.RequirementSet{}, 0, err
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return models.RequirementSet{}, 0, errors.New("limit must be a positive integer")
		}
	}

	requirements := models.RequirementSet{
		RequiredAttributes: attributes,
		MinARate:           minARate,
		MinGPA:             minGPA,
	}.Normalize()
	return requirements, limit, nil
}

func floatParam(c *gin.Context, max float64, names ...string) (*float64, error) {
	for _, name := range names {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || v < 0 || v > max {
			return nil, errors.New(name + " must be a number between 0 and " + strconv.FormatFloat(max, 'f', -1, 64))
		}
		return &v, nil
	}
	return nil, nil
}
