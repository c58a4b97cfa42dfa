package domain

import "time"

// Sentiment labels. SentimentLabel on a FeedbackEvent stays nil until the
// classification pass runs; the classifier is its only writer.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// FeedbackEvent is one review/rating instance tied to a Place and an
// optional Reviewer. Events are created fresh for every input row and are
// never deduplicated. Invariant: TextLength == len(*Text) when Text is
// non-nil, else 0.
type FeedbackEvent struct {
	ID             int64
	PlaceID        int64
	ReviewerID     *int64
	Rating         *int
	Title          *string
	Text           *string
	ReviewDate     *time.Time
	SentimentLabel *string
	TextLength     int
	CreatedAt      time.Time
}
