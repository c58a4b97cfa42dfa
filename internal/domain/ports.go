package domain

import (
	"context"
	"time"
)

// SourceRow is one raw record of the flat extract, untyped. The normalizer
// owns all coercion; readers only split and name the fields.
type SourceRow struct {
	Name       string
	Categories string
	Address    string
	City       string
	Province   string
	Country    string
	PostalCode string
	Latitude   string
	Longitude  string

	ReviewDate   string
	Rating       string
	Title        string
	Text         string
	Username     string
	UserCity     string
	UserProvince string
}

// RowReader yields extract rows in input order. Next returns io.EOF after
// the last row.
type RowReader interface {
	Next() (SourceRow, error)
}

// ImportStore opens transactional import batches. One ImportTx is one unit
// of crash recovery: everything inside it commits or rolls back together.
type ImportStore interface {
	BeginImport(ctx context.Context) (ImportTx, error)
}

// ImportTx is the write surface of a single import batch. The Create*
// methods for places and reviewers are insert-if-absent against the natural
// key constraint; created reports whether a new row was written.
type ImportTx interface {
	FindPlace(ctx context.Context, name, address *string) (int64, bool, error)
	FindPlaceByName(ctx context.Context, name *string) (int64, bool, error)
	CreatePlace(ctx context.Context, p Place) (id int64, created bool, err error)

	FindReviewer(ctx context.Context, username string) (int64, bool, error)
	CreateReviewer(ctx context.Context, r Reviewer) (id int64, created bool, err error)

	CreateFeedback(ctx context.Context, f FeedbackEvent) (int64, error)

	Commit() error
	Rollback() error
}

// UnlabeledFeedback is the minimal projection the classifier needs.
type UnlabeledFeedback struct {
	ID   int64
	Text *string
}

type LabelUpdate struct {
	FeedbackID int64
	Label      string
}

// ClassifyStore is the classification pass's store surface. ApplyLabels
// writes one flush as a single transaction and must only touch rows whose
// label is still null.
type ClassifyStore interface {
	ListUnlabeled(ctx context.Context) ([]UnlabeledFeedback, error)
	ApplyLabels(ctx context.Context, updates []LabelUpdate) error
}

// Read models & queries

type SentimentCounts struct {
	Positive int64
	Neutral  int64
	Negative int64
	Total    int64
}

type SentimentOverview struct {
	SentimentCounts
	PositivePct float64
	NeutralPct  float64
	NegativePct float64
}

type PlaceSentiment struct {
	PlaceID     int64
	PlaceName   *string
	City        *string
	Country     *string
	Reviews     int64
	Positive    int64
	Neutral     int64
	Negative    int64
	PositivePct float64
	AvgRating   *float64
}

// Sort keys for BreakdownQuery. Unknown keys fall back to SortPositivePct.
const (
	SortPositivePct = "positive_pct"
	SortReviews     = "reviews_count"
	SortAvgRating   = "avg_rating"
)

type BreakdownQuery struct {
	Search *string // case-insensitive substring over name/address/city
	Sort   string
	Limit  int
	Offset int
}

type TrendPoint struct {
	Period   string // calendar month, "YYYY-MM"
	Positive int64
	Neutral  int64
	Negative int64
	Total    int64
}

// TrendQuery narrows the dated feedback set before monthly bucketing.
// Start is inclusive, End exclusive; nil means unbounded.
type TrendQuery struct {
	PlaceID *int64
	Start   *time.Time
	End     *time.Time
}

type FeedbackQuery struct {
	PlaceID    *int64
	ReviewerID *int64
	RatingMin  *int
	RatingMax  *int
	Limit      int
	Offset     int
}

// FeedbackView joins an event with its place name and reviewer username.
type FeedbackView struct {
	FeedbackEvent
	PlaceName *string
	Username  *string
}

type PlacesQuery struct {
	Search  *string
	City    *string
	Country *string
	Limit   int
	Offset  int
}

type ReviewersQuery struct {
	Search *string // substring over username
	Limit  int
	Offset int
}

// ReadStore is the aggregation/reporting surface consumed by the serving
// layer. All methods are read-only.
type ReadStore interface {
	SentimentCounts(ctx context.Context) (SentimentCounts, error)
	PlaceBreakdown(ctx context.Context, q BreakdownQuery) ([]PlaceSentiment, error)
	PlaceSentimentByID(ctx context.Context, placeID int64) (PlaceSentiment, error)
	Trend(ctx context.Context, q TrendQuery) ([]TrendPoint, error)

	ListFeedback(ctx context.Context, q FeedbackQuery) ([]FeedbackView, error)
	ListPlaces(ctx context.Context, q PlacesQuery) ([]Place, error)
	GetPlace(ctx context.Context, id int64) (Place, error)
	ListReviewers(ctx context.Context, q ReviewersQuery) ([]Reviewer, error)
}

// PolarityAnalyzer scores text polarity in [-1, 1].
type PolarityAnalyzer interface {
	Polarity(text string) (float64, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
