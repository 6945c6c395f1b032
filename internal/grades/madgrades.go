package grades

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yishak-cs/course-recommender/internal/metrics"
	"github.com/yishak-cs/course-recommender/internal/models"
	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var (
	gpaPattern         = regexp.MustCompile(`(?i)GPA[:\s]+(\d+\.\d+)`)
	aPercentPattern    = regexp.MustCompile(`\bA[:\s]+(\d+(?:\.\d+)?)\s*%`)
	scriptACountRegexp = regexp.MustCompile(`"A"[:\s]+(\d+)`)
	scriptTotalRegexp  = regexp.MustCompile(`(?i)total["']?[:\s]+(\d+)`)
)

// MadGrades scrapes course pages on madgrades.com
type MadGrades struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewMadGrades creates a live grade source
func NewMadGrades(baseURL string, timeout time.Duration, logger *zap.Logger) *MadGrades {
	if baseURL == "" {
		baseURL = DefaultMadGradesURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MadGrades{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "grades.madgrades")),
	}
}

// Lookup implements Source
func (m *MadGrades) Lookup(ctx context.Context, courseCode string) models.GradeRecord {
	url := CourseURL(m.baseURL, courseCode)

	body, err := m.fetch(ctx, url)
	if err != nil {
		m.fail(courseCode, err)
		return models.UnavailableGrades(courseCode)
	}
	defer body.Close()

	record, err := ParseGradePage(courseCode, body)
	if err != nil {
		m.fail(courseCode, err)
		return models.UnavailableGrades(courseCode)
	}
	record.SourceURL = url
	return record
}

func (m *MadGrades) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", apperrors.ErrSourceUnavailable, url, resp.StatusCode)
	}
	return resp.Body, nil
}

func (m *MadGrades) fail(courseCode string, err error) {
	metrics.RecordSourceFailure("madgrades")
	m.logger.Warn("grade lookup failed", zap.String("course", courseCode), zap.Error(err))
}

// ParseGradePage extracts the A-rate and GPA from a course page. It returns
// an error when neither figure can be found.
func ParseGradePage(courseCode string, r io.Reader) (models.GradeRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return models.GradeRecord{}, err
	}

	var aRate, gpa *float64

	text := doc.Find("body").Text()
	if m := gpaPattern.FindStringSubmatch(text); m != nil {
		gpa = parseBounded(m[1], 4)
	}
	if m := aPercentPattern.FindStringSubmatch(text); m != nil {
		aRate = parseBounded(m[1], 100)
	}

	// cumulative grade counts embedded in page scripts take precedence
	doc.Find("script").Each(func(_ int, script *goquery.Selection) {
		src := script.Text()
		aMatch := scriptACountRegexp.FindStringSubmatch(src)
		totalMatch := scriptTotalRegexp.FindStringSubmatch(src)
		if aMatch == nil || totalMatch == nil {
			return
		}
		aCount, _ := strconv.Atoi(aMatch[1])
		total, _ := strconv.Atoi(totalMatch[1])
		if total <= 0 || aCount > total {
			return
		}
		aRate = models.Float64(round(float64(aCount)/float64(total)*100, 1))
	})

	note := ""
	if aRate == nil && gpa != nil {
		aRate = models.Float64(EstimateARateFromGPA(*gpa))
		note = "A rate estimated from GPA"
	}
	if aRate == nil {
		return models.GradeRecord{}, fmt.Errorf("%w: no grade figures on page for %s", apperrors.ErrSourceUnavailable, courseCode)
	}

	return models.GradeRecord{
		CourseCode: courseCode,
		ARate:      aRate,
		GPA:        gpa,
		Available:  true,
		Note:       note,
	}, nil
}

// EstimateARateFromGPA is a coarse step mapping used when only a GPA is known
func EstimateARateFromGPA(gpa float64) float64 {
	switch {
	case gpa >= 3.8:
		return 70.0
	case gpa >= 3.5:
		return 50.0
	case gpa >= 3.2:
		return 35.0
	case gpa >= 3.0:
		return 25.0
	case gpa >= 2.7:
		return 15.0
	default:
		return 10.0
	}
}

func parseBounded(raw string, max float64) *float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > max {
		return nil
	}
	return &v
}
