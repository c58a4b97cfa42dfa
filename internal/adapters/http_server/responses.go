package httpserver

import (
	"time"

	"place_pulse/internal/domain"
)

type overviewResponse struct {
	Positive    int64   `json:"positive"`
	Neutral     int64   `json:"neutral"`
	Negative    int64   `json:"negative"`
	Total       int64   `json:"total"`
	PositivePct float64 `json:"positive_pct"`
	NeutralPct  float64 `json:"neutral_pct"`
	NegativePct float64 `json:"negative_pct"`
}

type placeSentimentResponse struct {
	PlaceID     int64    `json:"place_id"`
	PlaceName   *string  `json:"place_name"`
	City        *string  `json:"city"`
	Country     *string  `json:"country"`
	Reviews     int64    `json:"reviews_count"`
	Positive    int64    `json:"positive"`
	Neutral     int64    `json:"neutral"`
	Negative    int64    `json:"negative"`
	PositivePct float64  `json:"positive_pct"`
	AvgRating   *float64 `json:"avg_rating"`
}

func toPlaceSentimentResponse(ps domain.PlaceSentiment) placeSentimentResponse {
	return placeSentimentResponse{
		PlaceID:     ps.PlaceID,
		PlaceName:   ps.PlaceName,
		City:        ps.City,
		Country:     ps.Country,
		Reviews:     ps.Reviews,
		Positive:    ps.Positive,
		Neutral:     ps.Neutral,
		Negative:    ps.Negative,
		PositivePct: ps.PositivePct,
		AvgRating:   ps.AvgRating,
	}
}

type trendPointResponse struct {
	Period   string `json:"period"`
	Positive int64  `json:"positive"`
	Neutral  int64  `json:"neutral"`
	Negative int64  `json:"negative"`
	Total    int64  `json:"total"`
}

type placeResponse struct {
	ID         int64    `json:"id"`
	Name       *string  `json:"name"`
	Categories *string  `json:"categories"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	Province   *string  `json:"province"`
	Country    *string  `json:"country"`
	PostalCode *string  `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func toPlaceResponse(p domain.Place) placeResponse {
	return placeResponse{
		ID:         p.ID,
		Name:       p.Name,
		Categories: p.Categories,
		Address:    p.Address,
		City:       p.City,
		Province:   p.Province,
		Country:    p.Country,
		PostalCode: p.PostalCode,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
	}
}

type reviewerResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	City      *string   `json:"city"`
	Province  *string   `json:"province"`
	CreatedAt time.Time `json:"created_at"`
}

type feedbackResponse struct {
	ID             int64      `json:"id"`
	PlaceID        int64      `json:"place_id"`
	PlaceName      *string    `json:"place_name"`
	ReviewerID     *int64     `json:"reviewer_id"`
	Username       *string    `json:"username"`
	Rating         *int       `json:"rating"`
	Title          *string    `json:"title"`
	Text           *string    `json:"text"`
	ReviewDate     *time.Time `json:"review_date"`
	SentimentLabel *string    `json:"sentiment_label"`
	TextLength     int        `json:"text_length"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toFeedbackResponse(fv domain.FeedbackView) feedbackResponse {
	return feedbackResponse{
		ID:             fv.ID,
		PlaceID:        fv.PlaceID,
		PlaceName:      fv.PlaceName,
		ReviewerID:     fv.ReviewerID,
		Username:       fv.Username,
		Rating:         fv.Rating,
		Title:          fv.Title,
		Text:           fv.Text,
		ReviewDate:     fv.ReviewDate,
		SentimentLabel: fv.SentimentLabel,
		TextLength:     fv.TextLength,
		CreatedAt:      fv.CreatedAt,
	}
}
