package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

const requestTimeout = 15 * time.Second

// ErrNotConfigured is returned when the API key or engine id is missing.
var ErrNotConfigured = errors.New("web search is not configured")

// recruitmentSites is the fixed allow-list the search is scoped to.
var recruitmentSites = []string{
	"vti.com.vn",
	"topcv.vn",
	"vietnamworks.com",
	"indeed.com",
	"jobstreet.com",
	"careerbuilder.com",
	"ziprecruiter.com",
	"glassdoor.com",
	"monster.com",
	"careerjet.com",
	"jobrapido.com",
	"topdev.vn",
}

type cseLister interface {
	list(ctx context.Context, query string, num int64) ([]*customsearch.Result, error)
}

// CSE searches the web through the Google Custom Search API, biased to the
// recruitment-site allow-list.
type CSE struct {
	lister cseLister
	sites  []string
	logger *zap.Logger
}

type apiLister struct {
	svc *customsearch.Service
	cx  string
}

func (a *apiLister) list(ctx context.Context, query string, num int64) ([]*customsearch.Result, error) {
	resp, err := a.svc.Cse.List().Cx(a.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func NewCSE(ctx context.Context, apiKey, cx string, logger *zap.Logger) (*CSE, error) {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(cx) == "" {
		return nil, ErrNotConfigured
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &CSE{
		lister: &apiLister{svc: svc, cx: cx},
		sites:  recruitmentSites,
		logger: logger,
	}, nil
}

// Search issues the scoped query and returns at most max results (capped at 10).
func (c *CSE) Search(ctx context.Context, query string, max int) (*Results, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	scoped := fmt.Sprintf("%s %s", scopeQuery(c.sites), query)
	num := int64(clampMax(max))

	items, err := c.lister.list(ctx, scoped, num)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := &Results{Items: make([]Result, 0, len(items))}
	for _, item := range items {
		results.Items = append(results.Items, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}

	c.logger.Debug("web search completed",
		zap.String("query", query),
		zap.Int("results", len(results.Items)),
	)

	return results, nil
}

// scopeQuery combines the allow-listed sites with OR so results are biased to
// recruitment pages: (site:a OR site:b) query.
func scopeQuery(sites []string) string {
	scopes := make([]string, 0, len(sites))
	for _, site := range sites {
		scopes = append(scopes, "site:"+site)
	}
	return "(" + strings.Join(scopes, " OR ") + ")"
}
