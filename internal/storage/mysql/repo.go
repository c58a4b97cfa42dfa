package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"place_pulse/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	n := int(ni.Int64)
	return &n
}
func nullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}
func nullF64(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ----------------------------------------------------------------------------
// Import path
// ----------------------------------------------------------------------------

type importTx struct{ tx *sql.Tx }

func (r *Repo) BeginImport(ctx context.Context) (domain.ImportTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &importTx{tx: tx}, nil
}

func (t *importTx) FindPlace(ctx context.Context, name, address *string) (int64, bool, error) {
	return scanID(t.tx.QueryRowContext(ctx, findPlaceSQL, valStr(name), valStr(address)))
}

func (t *importTx) FindPlaceByName(ctx context.Context, name *string) (int64, bool, error) {
	return scanID(t.tx.QueryRowContext(ctx, findPlaceByNameSQL, valStr(name)))
}

func scanID(row *sql.Row) (int64, bool, error) {
	var id int64
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (t *importTx) CreatePlace(ctx context.Context, p domain.Place) (int64, bool, error) {
	res, err := t.tx.ExecContext(ctx, insertPlaceSQL,
		valStr(p.Name),
		valStr(p.Categories),
		valStr(p.Address),
		valStr(p.City),
		valStr(p.Province),
		valStr(p.Country),
		valStr(p.PostalCode),
		valF64(p.Latitude),
		valF64(p.Longitude),
	)
	if err != nil {
		return 0, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	// 1 affected row means a fresh insert; 0 or 2 mean the unique key matched
	// an existing row.
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	return id, n == 1, nil
}

func (t *importTx) FindReviewer(ctx context.Context, username string) (int64, bool, error) {
	return scanID(t.tx.QueryRowContext(ctx, findReviewerSQL, username))
}

func (t *importTx) CreateReviewer(ctx context.Context, rv domain.Reviewer) (int64, bool, error) {
	res, err := t.tx.ExecContext(ctx, insertReviewerSQL,
		rv.Username,
		valStr(rv.City),
		valStr(rv.Province),
	)
	if err != nil {
		return 0, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	return id, n == 1, nil
}

func (t *importTx) CreateFeedback(ctx context.Context, f domain.FeedbackEvent) (int64, error) {
	res, err := t.tx.ExecContext(ctx, insertFeedbackSQL,
		f.PlaceID,
		valInt64(f.ReviewerID),
		valInt(f.Rating),
		valStr(f.Title),
		valStr(f.Text),
		nullableTime(f.ReviewDate),
		f.TextLength,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *importTx) Commit() error   { return t.tx.Commit() }
func (t *importTx) Rollback() error { return t.tx.Rollback() }

func nullableTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return *p
}

// ----------------------------------------------------------------------------
// Classification path
// ----------------------------------------------------------------------------

func (r *Repo) ListUnlabeled(ctx context.Context) ([]domain.UnlabeledFeedback, error) {
	rows, err := r.db.QueryContext(ctx, listUnlabeledSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UnlabeledFeedback
	for rows.Next() {
		var u domain.UnlabeledFeedback
		var text sql.NullString
		if err := rows.Scan(&u.ID, &text); err != nil {
			return nil, err
		}
		u.Text = nullStr(text)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repo) ApplyLabels(ctx context.Context, updates []domain.LabelUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, applyLabelSQL)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.Label, u.FeedbackID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("label feedback %d: %w", u.FeedbackID, err)
		}
	}
	return tx.Commit()
}

// ----------------------------------------------------------------------------
// Read path
// ----------------------------------------------------------------------------

func (r *Repo) SentimentCounts(ctx context.Context) (domain.SentimentCounts, error) {
	var pos, neu, neg sql.NullInt64
	var total int64
	err := r.db.QueryRowContext(ctx, sentimentCountsSQL).Scan(&pos, &neu, &neg, &total)
	if err != nil {
		return domain.SentimentCounts{}, err
	}
	return domain.SentimentCounts{
		Positive: pos.Int64,
		Neutral:  neu.Int64,
		Negative: neg.Int64,
		Total:    total,
	}, nil
}

var breakdownSort = map[string]string{
	domain.SortPositivePct: "positive_pct DESC",
	domain.SortReviews:     "f.total DESC",
	domain.SortAvgRating:   "COALESCE(f.avg_rating, 0) DESC",
}

func (r *Repo) PlaceBreakdown(ctx context.Context, q domain.BreakdownQuery) ([]domain.PlaceSentiment, error) {
	sqlStr := placeBreakdownPrefix
	var args []any
	if q.Search != nil {
		like := "%" + strings.ToLower(*q.Search) + "%"
		sqlStr += placeBreakdownSearch
		args = append(args, like, like, like)
	}
	order, ok := breakdownSort[q.Sort]
	if !ok {
		order = breakdownSort[domain.SortPositivePct]
	}
	sqlStr += "ORDER BY " + order + "\nLIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PlaceSentiment
	for rows.Next() {
		ps, err := scanPlaceSentiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func scanPlaceSentiment(rows *sql.Rows) (domain.PlaceSentiment, error) {
	var ps domain.PlaceSentiment
	var name, city, country sql.NullString
	var avg sql.NullFloat64
	if err := rows.Scan(
		&ps.PlaceID,
		&name, &city, &country,
		&ps.Reviews,
		&ps.Positive, &ps.Neutral, &ps.Negative,
		&ps.PositivePct,
		&avg,
	); err != nil {
		return domain.PlaceSentiment{}, err
	}
	ps.PlaceName = nullStr(name)
	ps.City = nullStr(city)
	ps.Country = nullStr(country)
	ps.AvgRating = nullF64(avg)
	return ps, nil
}

func (r *Repo) PlaceSentimentByID(ctx context.Context, placeID int64) (domain.PlaceSentiment, error) {
	p, err := r.GetPlace(ctx, placeID)
	if err != nil {
		return domain.PlaceSentiment{}, err
	}

	var pos, neu, neg sql.NullInt64
	var total int64
	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, placeSentimentSQL, placeID).
		Scan(&pos, &neu, &neg, &total, &avg); err != nil {
		return domain.PlaceSentiment{}, err
	}

	ps := domain.PlaceSentiment{
		PlaceID:   p.ID,
		PlaceName: p.Name,
		City:      p.City,
		Country:   p.Country,
		Reviews:   total,
		Positive:  pos.Int64,
		Neutral:   neu.Int64,
		Negative:  neg.Int64,
		AvgRating: nullF64(avg),
	}
	if total > 0 {
		ps.PositivePct = float64(ps.Positive) / float64(total) * 100
	}
	return ps, nil
}

func (r *Repo) Trend(ctx context.Context, q domain.TrendQuery) ([]domain.TrendPoint, error) {
	sqlStr := trendPrefix
	var args []any
	if q.PlaceID != nil {
		sqlStr += "AND place_id = ?\n"
		args = append(args, *q.PlaceID)
	}
	if q.Start != nil {
		sqlStr += "AND review_date >= ?\n"
		args = append(args, *q.Start)
	}
	if q.End != nil {
		sqlStr += "AND review_date < ?\n"
		args = append(args, *q.End)
	}
	sqlStr += trendSuffix

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrendPoint
	for rows.Next() {
		var tp domain.TrendPoint
		var pos, neu, neg sql.NullInt64
		if err := rows.Scan(&tp.Period, &pos, &neu, &neg, &tp.Total); err != nil {
			return nil, err
		}
		tp.Positive = pos.Int64
		tp.Neutral = neu.Int64
		tp.Negative = neg.Int64
		out = append(out, tp)
	}
	return out, rows.Err()
}

func (r *Repo) ListFeedback(ctx context.Context, q domain.FeedbackQuery) ([]domain.FeedbackView, error) {
	sqlStr := listFeedbackPrefix
	var conds []string
	var args []any
	if q.PlaceID != nil {
		conds = append(conds, "f.place_id = ?")
		args = append(args, *q.PlaceID)
	}
	if q.ReviewerID != nil {
		conds = append(conds, "f.reviewer_id = ?")
		args = append(args, *q.ReviewerID)
	}
	if q.RatingMin != nil {
		conds = append(conds, "f.rating >= ?")
		args = append(args, *q.RatingMin)
	}
	if q.RatingMax != nil {
		conds = append(conds, "f.rating <= ?")
		args = append(args, *q.RatingMax)
	}
	if len(conds) > 0 {
		sqlStr += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	sqlStr += "ORDER BY f.id\nLIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FeedbackView
	for rows.Next() {
		var fv domain.FeedbackView
		var placeName, username, title, text, label sql.NullString
		var reviewerID, rating sql.NullInt64
		var reviewDate sql.NullTime
		if err := rows.Scan(
			&fv.ID,
			&fv.PlaceID,
			&placeName,
			&reviewerID,
			&username,
			&rating,
			&title,
			&text,
			&reviewDate,
			&label,
			&fv.TextLength,
			&fv.CreatedAt,
		); err != nil {
			return nil, err
		}
		fv.PlaceName = nullStr(placeName)
		fv.ReviewerID = nullInt64(reviewerID)
		fv.Username = nullStr(username)
		fv.Rating = nullInt(rating)
		fv.Title = nullStr(title)
		fv.Text = nullStr(text)
		fv.SentimentLabel = nullStr(label)
		if reviewDate.Valid {
			d := reviewDate.Time
			fv.ReviewDate = &d
		}
		out = append(out, fv)
	}
	return out, rows.Err()
}

func (r *Repo) ListPlaces(ctx context.Context, q domain.PlacesQuery) ([]domain.Place, error) {
	sqlStr := listPlacesPrefix
	var conds []string
	var args []any
	if q.Search != nil {
		like := "%" + strings.ToLower(*q.Search) + "%"
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(city) LIKE ? OR LOWER(categories) LIKE ?)")
		args = append(args, like, like, like, like)
	}
	if q.City != nil {
		conds = append(conds, "city = ?")
		args = append(args, *q.City)
	}
	if q.Country != nil {
		conds = append(conds, "country = ?")
		args = append(args, *q.Country)
	}
	if len(conds) > 0 {
		sqlStr += "WHERE " + strings.Join(conds, " AND ") + "\n"
	}
	sqlStr += "ORDER BY id\nLIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetPlace(ctx context.Context, id int64) (domain.Place, error) {
	p, err := scanPlace(r.db.QueryRowContext(ctx, getPlaceSQL, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}
	return p, nil
}

func scanPlace(scan func(...any) error) (domain.Place, error) {
	var p domain.Place
	var name, categories, address, city, province, country, postal sql.NullString
	var lat, lon sql.NullFloat64
	if err := scan(
		&p.ID,
		&name, &categories, &address, &city, &province, &country, &postal,
		&lat, &lon,
	); err != nil {
		return domain.Place{}, err
	}
	p.Name = nullStr(name)
	p.Categories = nullStr(categories)
	p.Address = nullStr(address)
	p.City = nullStr(city)
	p.Province = nullStr(province)
	p.Country = nullStr(country)
	p.PostalCode = nullStr(postal)
	p.Latitude = nullF64(lat)
	p.Longitude = nullF64(lon)
	return p, nil
}

func (r *Repo) ListReviewers(ctx context.Context, q domain.ReviewersQuery) ([]domain.Reviewer, error) {
	sqlStr := listReviewersPrefix
	var args []any
	if q.Search != nil {
		sqlStr += "WHERE LOWER(username) LIKE ?\n"
		args = append(args, "%"+strings.ToLower(*q.Search)+"%")
	}
	sqlStr += "ORDER BY id\nLIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reviewer
	for rows.Next() {
		var rv domain.Reviewer
		var city, province sql.NullString
		if err := rows.Scan(&rv.ID, &rv.Username, &city, &province, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.City = nullStr(city)
		rv.Province = nullStr(province)
		out = append(out, rv)
	}
	return out, rows.Err()
}
