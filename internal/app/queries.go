package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"place_pulse/internal/domain"
)

var ErrBadPeriod = errors.New("period must be YYYY-MM or YYYY-MM-DD")

type QueryService struct {
	repo     domain.ReadStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReadStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// pct is the null-safe percentage: zero total is defined as 0, rounded to
// two decimals.
func pct(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}

func (s *QueryService) Overview(ctx context.Context) (domain.SentimentOverview, error) {
	const key = "sentiment:overview"
	var ov domain.SentimentOverview
	if ok, _ := s.cache.Get(ctx, key, &ov); ok {
		return ov, nil
	}
	counts, err := s.repo.SentimentCounts(ctx)
	if err != nil {
		return domain.SentimentOverview{}, err
	}
	ov = domain.SentimentOverview{
		SentimentCounts: counts,
		PositivePct:     pct(counts.Positive, counts.Total),
		NeutralPct:      pct(counts.Neutral, counts.Total),
		NegativePct:     pct(counts.Negative, counts.Total),
	}
	_ = s.cache.Set(ctx, key, ov, int(s.cacheTTL.Seconds()))
	return ov, nil
}

func (s *QueryService) PlaceBreakdown(ctx context.Context, q domain.BreakdownQuery) ([]domain.PlaceSentiment, error) {
	q.Limit = clampLimit(q.Limit, 25, 200)
	q.Offset = clampOffset(q.Offset)
	switch q.Sort {
	case domain.SortPositivePct, domain.SortReviews, domain.SortAvgRating:
	default:
		q.Sort = domain.SortPositivePct
	}

	key := fmt.Sprintf("sentiment:by-place:%s:%s:%d:%d", deref(q.Search), q.Sort, q.Limit, q.Offset)
	var out []domain.PlaceSentiment
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rows, err := s.repo.PlaceBreakdown(ctx, q)
	if err != nil {
		return nil, err
	}

	// copy to avoid aliasing the repo's backing array in the cached value
	out = make([]domain.PlaceSentiment, len(rows))
	copy(out, rows)

	if b, _ := json.Marshal(out); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func (s *QueryService) PlaceSentiment(ctx context.Context, placeID int64) (domain.PlaceSentiment, error) {
	key := fmt.Sprintf("sentiment:place:%d", placeID)
	var ps domain.PlaceSentiment
	if ok, _ := s.cache.Get(ctx, key, &ps); ok {
		return ps, nil
	}
	ps, err := s.repo.PlaceSentimentByID(ctx, placeID)
	if err != nil {
		return domain.PlaceSentiment{}, err
	}
	_ = s.cache.Set(ctx, key, ps, int(s.cacheTTL.Seconds()))
	return ps, nil
}

func (s *QueryService) Trend(ctx context.Context, q domain.TrendQuery) ([]domain.TrendPoint, error) {
	key := fmt.Sprintf("sentiment:trend:%s:%s:%s", derefInt64(q.PlaceID), derefTime(q.Start), derefTime(q.End))
	var out []domain.TrendPoint
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	rows, err := s.repo.Trend(ctx, q)
	if err != nil {
		return nil, err
	}
	out = make([]domain.TrendPoint, len(rows))
	copy(out, rows)
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// ParsePeriodStart parses an inclusive range start: a month becomes its
// first day. Empty input means unbounded.
func ParsePeriodStart(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, ErrBadPeriod
}

// ParsePeriodEnd parses an exclusive range end: a month becomes the first
// day of the following month, a date stays as given.
func ParsePeriodEnd(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01", s); err == nil {
		t = t.AddDate(0, 1, 0)
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	return nil, ErrBadPeriod
}

// Thin read paths for the serving layer. These are not cached: they page over
// data an in-flight import may still be appending to.

func (s *QueryService) ListFeedback(ctx context.Context, q domain.FeedbackQuery) ([]domain.FeedbackView, error) {
	q.Limit = clampLimit(q.Limit, 50, 200)
	q.Offset = clampOffset(q.Offset)
	return s.repo.ListFeedback(ctx, q)
}

func (s *QueryService) ListPlaces(ctx context.Context, q domain.PlacesQuery) ([]domain.Place, error) {
	q.Limit = clampLimit(q.Limit, 50, 200)
	q.Offset = clampOffset(q.Offset)
	return s.repo.ListPlaces(ctx, q)
}

func (s *QueryService) GetPlace(ctx context.Context, id int64) (domain.Place, error) {
	return s.repo.GetPlace(ctx, id)
}

func (s *QueryService) ListReviewers(ctx context.Context, q domain.ReviewersQuery) ([]domain.Reviewer, error) {
	q.Limit = clampLimit(q.Limit, 50, 200)
	q.Offset = clampOffset(q.Offset)
	return s.repo.ListReviewers(ctx, q)
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func clampOffset(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func derefInt64(p *int64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func derefTime(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format("2006-01-02")
}
