package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yishak-cs/course-recommender/internal/metrics"
	"github.com/yishak-cs/course-recommender/internal/models"
	apperrors "github.com/yishak-cs/course-recommender/pkg/errors"
)

const (
	DefaultGuideURL = "https://guide.wisc.edu/courses/"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// concurrent subject pages fetched by ListByAttributes
	guideFetchLimit = 2
)

var (
	// "COMP SCI 200 — Programming I (3 credits)"
	courseTitlePattern = regexp.MustCompile(`^([A-Z][A-Z &/]*?)\s+(\d+)\s*[—–-]\s*(.+?)(?:\s*\((\d+(?:-\d+)?)\s*[Cc]redits?\.?\))?$`)
	subjectHrefPattern = regexp.MustCompile(`/courses/([a-z_]+)/?$`)
	descCommB          = regexp.MustCompile(`(?i)\bcomm[- ]b\b`)
	descCommA          = regexp.MustCompile(`(?i)\bcomm[- ]a\b`)
)

// attribute tags recognized in the "courseblockextra" paragraph
var guideAttributes = []struct {
	tag     string
	pattern *regexp.Regexp
}{
	{"Comm A", regexp.MustCompile(`(?i)comm a\b`)},
	{"Comm B", regexp.MustCompile(`(?i)comm b\b`)},
	{"Ethnic Studies", regexp.MustCompile(`(?i)ethnic studies`)},
	{"L&S Credit", regexp.MustCompile(`(?i)l&s credit`)},
	{"Natural Science", regexp.MustCompile(`(?i)natural science`)},
	{"Social Science", regexp.MustCompile(`(?i)social science`)},
	{"Humanities", regexp.MustCompile(`(?i)humanities`)},
	{"Biological Sci", regexp.MustCompile(`(?i)biological sci`)},
	{"Physical Sci", regexp.MustCompile(`(?i)physical sci`)},
	{"Elementary", regexp.MustCompile(`(?i)elementary`)},
	{"Intermediate", regexp.MustCompile(`(?i)intermediate`)},
	{"Advanced", regexp.MustCompile(`(?i)advanced`)},
}

// Guide scrapes the public UW-Madison course guide
type Guide struct {
	baseURL  string
	subjects []string
	client   *http.Client
	logger   *zap.Logger
}

// NewGuide creates a guide scraper. subjects is the default set scanned by
// ListByAttributes.
func NewGuide(baseURL string, subjects []string, timeout time.Duration, logger *zap.Logger) *Guide {
	if baseURL == "" {
		baseURL = DefaultGuideURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Guide{
		baseURL:  baseURL,
		subjects: subjects,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With(zap.String("component", "catalog.guide")),
	}
}

// ListByAttributes scrapes the configured subjects and keeps courses carrying
// any of attributes
func (g *Guide) ListByAttributes(ctx context.Context, attributes []string) []models.CourseRecord {
	pages := make([][]models.CourseRecord, len(g.subjects))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(guideFetchLimit)
	for i, subject := range g.subjects {
		eg.Go(func() error {
			pages[i] = g.ListBySubject(egCtx, subject)
			return nil
		})
	}
	_ = eg.Wait()

	var all []models.CourseRecord
	for _, page := range pages {
		all = append(all, page...)
	}
	return filterByAttributes(all, attributes)
}

// ListBySubject implements Source
func (g *Guide) ListBySubject(ctx context.Context, subject string) []models.CourseRecord {
	url := g.baseURL + SubjectSlug(subject) + "/"
	body, err := g.fetch(ctx, url)
	if err != nil {
		g.fail("failed to fetch subject page", err, zap.String("subject", subject))
		return []models.CourseRecord{}
	}
	defer body.Close()

	courses, err := ParseCourseBlocks(body)
	if err != nil {
		g.fail("failed to parse subject page", err, zap.String("subject", subject))
		return []models.CourseRecord{}
	}
	return courses
}

// ListSubjects implements SubjectLister
func (g *Guide) ListSubjects(ctx context.Context) []Subject {
	body, err := g.fetch(ctx, g.baseURL)
	if err != nil {
		g.fail("failed to fetch subject index", err)
		return []Subject{}
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		g.fail("failed to parse subject index", err)
		return []Subject{}
	}

	subjects := []Subject{}
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		m := subjectHrefPattern.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		subjects = append(subjects, Subject{
			Code: strings.ToUpper(strings.ReplaceAll(m[1], "_", " ")),
			Name: normalizeSpace(link.Text()),
			URL:  g.baseURL + m[1] + "/",
		})
	})
	return subjects
}

func (g *Guide) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSourceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", apperrors.ErrSourceUnavailable, url, resp.StatusCode)
	}
	return resp.Body, nil
}

func (g *Guide) fail(msg string, err error, fields ...zap.Field) {
	metrics.RecordSourceFailure("guide")
	g.logger.Warn(msg, append(fields, zap.Error(err))...)
}

// SubjectSlug converts a subject code to its URL path segment,
// e.g. "COMP SCI" -> "comp_sci"
func SubjectSlug(subject string) string {
	return strings.ToLower(strings.Join(strings.Fields(subject), "_"))
}

// ParseCourseBlocks extracts course records from a guide subject page.
// Blocks whose title cannot be parsed are skipped.
func ParseCourseBlocks(r io.Reader) ([]models.CourseRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	courses := []models.CourseRecord{}
	doc.Find("div.courseblock").Each(func(_ int, block *goquery.Selection) {
		title := normalizeSpace(block.Find("p.courseblocktitle").Text())
		m := courseTitlePattern.FindStringSubmatch(title)
		if m == nil {
			return
		}

		description := normalizeSpace(block.Find("p.courseblockdesc").Text())
		extra := normalizeSpace(block.Find("p.courseblockextra").Text())

		course := models.NewCourseRecord(m[1], m[2], m[3], m[4], description, extractAttributes(extra, description)...)
		course.Requisites = normalizeSpace(block.Find("p.courseblockrequisite").Text())
		courses = append(courses, course)
	})
	return courses, nil
}

func extractAttributes(extra, description string) []string {
	attributes := []string{}
	add := func(tag string) {
		for _, a := range attributes {
			if a == tag {
				return
			}
		}
		attributes = append(attributes, tag)
	}

	for _, attr := range guideAttributes {
		if extra != "" && attr.pattern.MatchString(extra) {
			add(attr.tag)
		}
	}
	if descCommB.MatchString(description) {
		add("Comm B")
	}
	if descCommA.MatchString(description) {
		add("Comm A")
	}
	return attributes
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
