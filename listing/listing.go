// Package listing serves filtered, paginated case views. An enriched query is tried first;
// when it fails a plain query over the case table answers instead.
package listing

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diantamela/satgas-ppk/metrics"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

// Page size bounds
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Strategy answers one page of a listing together with the filtered total
type Strategy interface {
	Name() string
	List(ctx context.Context, q repository.CaseQuery) ([]models.CaseSummary, int64, error)
}

// Primary lists cases with their latest schedule and document count
type Primary struct {
	Summaries repository.SummaryRepository
	Cases     repository.CaseRepository
}

// Name of the strategy
func (Primary) Name() string { return "enriched" }

// List runs the page and count queries concurrently
func (p Primary) List(ctx context.Context, q repository.CaseQuery) ([]models.CaseSummary, int64, error) {
	var items []models.CaseSummary
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = p.Summaries.ListSummaries(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = p.Cases.Count(gctx, q.CaseFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Degraded lists plain cases without any joins
type Degraded struct {
	Cases repository.CaseRepository
}

// Name of the strategy
func (Degraded) Name() string { return "plain" }

// List runs the page and count queries concurrently
func (d Degraded) List(ctx context.Context, q repository.CaseQuery) ([]models.CaseSummary, int64, error) {
	var cases []models.Case
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cases, err = d.Cases.List(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = d.Cases.Count(gctx, q.CaseFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	items := make([]models.CaseSummary, 0, len(cases))
	for _, c := range cases {
		items = append(items, models.SummaryOf(c))
	}
	return items, total, nil
}

// Service picks the strategy for each listing
type Service struct {
	primary  Strategy
	degraded Strategy
}

// NewService builds a listing service from its two tiers
func NewService(primary, degraded Strategy) *Service {
	return &Service{primary: primary, degraded: degraded}
}

// ForStore wires both tiers to one backend
func ForStore(store repository.Store) *Service {
	return NewService(
		Primary{Summaries: store.Summaries(), Cases: store.Cases()},
		Degraded{Cases: store.Cases()},
	)
}

// ParseStatuses reads a comma separated status list in any casing. Unknown names are
// reported by value.
func ParseStatuses(raw string) ([]models.CaseStatus, []string) {
	var out []models.CaseStatus
	var unknown []string
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, ok := models.ParseCaseStatus(part)
		if !ok {
			unknown = append(unknown, part)
			continue
		}
		out = append(out, s)
	}
	return out, unknown
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ListCases returns one page of cases matching f. Pages are 1-indexed.
func (s *Service) ListCases(ctx context.Context, f models.CaseFilter, page, pageSize int) (*models.CaseList, error) {
	page, pageSize = normalizePage(page, pageSize)
	statuses := make([]models.CaseStatus, 0, len(f.Statuses))
	for _, st := range f.Statuses {
		if norm, ok := models.ParseCaseStatus(string(st)); ok {
			st = norm
		}
		statuses = append(statuses, st)
	}
	f.Statuses = statuses
	if f.ScheduledFrom != nil {
		f.ScheduledFrom = models.TimestampPtr(f.ScheduledFrom)
	}
	if f.ScheduledTo != nil {
		f.ScheduledTo = models.TimestampPtr(f.ScheduledTo)
	}
	q := repository.CaseQuery{CaseFilter: f, Offset: (page - 1) * pageSize, Limit: pageSize}

	degraded := false
	items, total, err := s.primary.List(ctx, q)
	if err != nil {
		zap.S().Warnw("enriched case listing failed, serving plain listing",
			"strategy", s.primary.Name(),
			"error", err)
		metrics.ListingFallbacks.Inc()
		var ferr error
		items, total, ferr = s.degraded.List(ctx, q)
		if ferr != nil {
			return nil, errors.Wrapf(ferr, "listing failed on both tiers (primary: %v)", err)
		}
		degraded = true
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	if items == nil {
		items = []models.CaseSummary{}
	}
	return &models.CaseList{
		Items: items,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Degraded: degraded,
	}, nil
}
