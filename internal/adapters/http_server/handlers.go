package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"place_pulse/internal/app"
	"place_pulse/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/places", h.listPlaces)
	s.mux.Get("/v1/places/{id}", h.getPlace)
	s.mux.Get("/v1/reviewers", h.listReviewers)
	s.mux.Get("/v1/feedback", h.listFeedback)

	s.mux.Get("/v1/sentiment/overview", h.overview)
	s.mux.Get("/v1/sentiment/by-place", h.byPlace)
	s.mux.Get("/v1/sentiment/places/{id}", h.placeSentiment)
	s.mux.Get("/v1/sentiment/trend", h.trend)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- query param helpers ----

func qStr(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func qInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func qInt64Ptr(r *http.Request, key string) (*int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func qIntPtr(r *http.Request, key string) (*int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ---- sentiment endpoints ----

func (h *Handlers) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.Q.Overview(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "overview query failed")
		return
	}
	writeJSON(w, r, overviewResponse{
		Positive:    ov.Positive,
		Neutral:     ov.Neutral,
		Negative:    ov.Negative,
		Total:       ov.Total,
		PositivePct: ov.PositivePct,
		NeutralPct:  ov.NeutralPct,
		NegativePct: ov.NegativePct,
	})
}

func (h *Handlers) byPlace(w http.ResponseWriter, r *http.Request) {
	limit, err := qInt(r, "limit")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
		return
	}
	offset, err := qInt(r, "offset")
	if err != nil || offset < 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid offset", "offset must be a non-negative integer")
		return
	}
	q := domain.BreakdownQuery{
		Search: qStr(r, "q"),
		Sort:   r.URL.Query().Get("sort"),
		Limit:  limit,
		Offset: offset,
	}
	rows, err := h.Q.PlaceBreakdown(r.Context(), q)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "breakdown query failed")
		return
	}
	out := make([]placeSentimentResponse, 0, len(rows))
	for _, ps := range rows {
		out = append(out, toPlaceSentimentResponse(ps))
	}
	writeJSON(w, r, out)
}

func (h *Handlers) placeSentiment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	ps, err := h.Q.PlaceSentiment(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "sentiment query failed")
		return
	}
	writeJSON(w, r, toPlaceSentimentResponse(ps))
}

func (h *Handlers) trend(w http.ResponseWriter, r *http.Request) {
	placeID, err := qInt64Ptr(r, "place_id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid place_id", "place_id must be a number")
		return
	}
	start, err := app.ParsePeriodStart(r.URL.Query().Get("start"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid start", err.Error())
		return
	}
	end, err := app.ParsePeriodEnd(r.URL.Query().Get("end"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid end", err.Error())
		return
	}
	points, err := h.Q.Trend(r.Context(), domain.TrendQuery{PlaceID: placeID, Start: start, End: end})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "trend query failed")
		return
	}
	out := make([]trendPointResponse, 0, len(points))
	for _, tp := range points {
		out = append(out, trendPointResponse{
			Period:   tp.Period,
			Positive: tp.Positive,
			Neutral:  tp.Neutral,
			Negative: tp.Negative,
			Total:    tp.Total,
		})
	}
	writeJSON(w, r, out)
}

// ---- thin list endpoints ----

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	limit, err := qInt(r, "limit")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
		return
	}
	offset, err := qInt(r, "offset")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid offset", "offset must be an integer")
		return
	}
	rows, err := h.Q.ListPlaces(r.Context(), domain.PlacesQuery{
		Search:  qStr(r, "q"),
		City:    qStr(r, "city"),
		Country: qStr(r, "country"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "places query failed")
		return
	}
	out := make([]placeResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, toPlaceResponse(p))
	}
	writeJSON(w, r, out)
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	p, err := h.Q.GetPlace(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "place query failed")
		return
	}
	writeJSON(w, r, toPlaceResponse(p))
}

func (h *Handlers) listReviewers(w http.ResponseWriter, r *http.Request) {
	limit, err := qInt(r, "limit")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
		return
	}
	offset, err := qInt(r, "offset")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid offset", "offset must be an integer")
		return
	}
	rows, err := h.Q.ListReviewers(r.Context(), domain.ReviewersQuery{
		Search: qStr(r, "q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "reviewers query failed")
		return
	}
	out := make([]reviewerResponse, 0, len(rows))
	for _, rv := range rows {
		out = append(out, reviewerResponse{
			ID:        rv.ID,
			Username:  rv.Username,
			City:      rv.City,
			Province:  rv.Province,
			CreatedAt: rv.CreatedAt,
		})
	}
	writeJSON(w, r, out)
}

func (h *Handlers) listFeedback(w http.ResponseWriter, r *http.Request) {
	placeID, err := qInt64Ptr(r, "place_id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid place_id", "place_id must be a number")
		return
	}
	reviewerID, err := qInt64Ptr(r, "reviewer_id")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid reviewer_id", "reviewer_id must be a number")
		return
	}
	ratingMin, err := qIntPtr(r, "rating_min")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid rating_min", "rating_min must be an integer")
		return
	}
	ratingMax, err := qIntPtr(r, "rating_max")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid rating_max", "rating_max must be an integer")
		return
	}
	limit, err := qInt(r, "limit")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer")
		return
	}
	offset, err := qInt(r, "offset")
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid offset", "offset must be an integer")
		return
	}
	rows, err := h.Q.ListFeedback(r.Context(), domain.FeedbackQuery{
		PlaceID:    placeID,
		ReviewerID: reviewerID,
		RatingMin:  ratingMin,
		RatingMax:  ratingMax,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "feedback query failed")
		return
	}
	out := make([]feedbackResponse, 0, len(rows))
	for _, fv := range rows {
		out = append(out, toFeedbackResponse(fv))
	}
	writeJSON(w, r, out)
}
