package mysql

// ----------------------------------------------------------------------------
// IMPORT WRITES
// ----------------------------------------------------------------------------

// `<=>` is the NULL-safe equality operator; natural-key components may be NULL.
const findPlaceSQL = `
SELECT id FROM places WHERE name <=> ? AND address <=> ? LIMIT 1
`

const findPlaceByNameSQL = `
SELECT id FROM places WHERE name <=> ? LIMIT 1
`

// Insert-if-absent against the (name, address) unique key. On conflict the
// LAST_INSERT_ID(id) trick makes LastInsertId return the existing row's id,
// so a lost race degrades to an id fetch instead of a duplicate row.
const insertPlaceSQL = `
INSERT INTO places
  (name, categories, address, city, province, country, postal_code, latitude, longitude)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
`

const findReviewerSQL = `
SELECT id FROM reviewers WHERE username = ? LIMIT 1
`

const insertReviewerSQL = `
INSERT INTO reviewers (username, city, province)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)
`

const insertFeedbackSQL = `
INSERT INTO feedback_events
  (place_id, reviewer_id, rating, title, ` + "`text`" + `, review_date, sentiment_label, text_length)
VALUES
  (?, ?, ?, ?, ?, ?, NULL, ?)
`

// ----------------------------------------------------------------------------
// CLASSIFICATION
// ----------------------------------------------------------------------------

const listUnlabeledSQL = `
SELECT id, ` + "`text`" + `
FROM feedback_events
WHERE sentiment_label IS NULL
ORDER BY id
`

// The IS NULL guard keeps the classifier the only writer of a label: a row
// labeled by a concurrent pass is left alone.
const applyLabelSQL = `
UPDATE feedback_events
SET sentiment_label = ?
WHERE id = ? AND sentiment_label IS NULL
`

// ----------------------------------------------------------------------------
// READ QUERIES
// ----------------------------------------------------------------------------

const sentimentCountsSQL = `
SELECT
  SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END),
  SUM(CASE WHEN sentiment_label = 'neutral'  THEN 1 ELSE 0 END),
  SUM(CASE WHEN sentiment_label = 'negative' THEN 1 ELSE 0 END),
  COUNT(*)
FROM feedback_events
`

// Per-place aggregation joined back to places. Assembled in the repo with an
// optional search filter and a whitelisted sort expression; MySQL has no
// NULLS LAST, so sorting coalesces NULL keys to 0.
const placeBreakdownPrefix = `
SELECT
  p.id,
  p.name,
  p.city,
  p.country,
  f.total,
  f.positive,
  f.neutral,
  f.negative,
  COALESCE(f.positive / NULLIF(f.total, 0) * 100, 0) AS positive_pct,
  f.avg_rating
FROM places p
JOIN (
  SELECT
    place_id,
    COUNT(*) AS total,
    SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END) AS positive,
    SUM(CASE WHEN sentiment_label = 'neutral'  THEN 1 ELSE 0 END) AS neutral,
    SUM(CASE WHEN sentiment_label = 'negative' THEN 1 ELSE 0 END) AS negative,
    AVG(rating) AS avg_rating
  FROM feedback_events
  GROUP BY place_id
) f ON f.place_id = p.id
`

const placeBreakdownSearch = `
WHERE LOWER(p.name) LIKE ? OR LOWER(p.address) LIKE ? OR LOWER(p.city) LIKE ?
`

const placeSentimentSQL = `
SELECT
  SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END),
  SUM(CASE WHEN sentiment_label = 'neutral'  THEN 1 ELSE 0 END),
  SUM(CASE WHEN sentiment_label = 'negative' THEN 1 ELSE 0 END),
  COUNT(*),
  AVG(rating)
FROM feedback_events
WHERE place_id = ?
`

// Monthly trend buckets over dated feedback only; the repo appends optional
// place and period bounds before GROUP BY.
const trendPrefix = `
SELECT
  DATE_FORMAT(review_date, '%Y-%m') AS period,
  SUM(CASE WHEN sentiment_label = 'positive' THEN 1 ELSE 0 END),
  SUM(CASE WHEN sentiment_label = 'neutral'  THEN 1 ELSE 0 END),
  SUM(CASE WHEN sentiment_label = 'negative' THEN 1 ELSE 0 END),
  COUNT(*)
FROM feedback_events
WHERE review_date IS NOT NULL
`

const trendSuffix = `
GROUP BY period
ORDER BY period
`

const listFeedbackPrefix = `
SELECT
  f.id,
  f.place_id,
  p.name,
  f.reviewer_id,
  r.username,
  f.rating,
  f.title,
  f.` + "`text`" + `,
  f.review_date,
  f.sentiment_label,
  f.text_length,
  f.created_at
FROM feedback_events f
JOIN places p ON p.id = f.place_id
LEFT JOIN reviewers r ON r.id = f.reviewer_id
`

const listPlacesPrefix = `
SELECT id, name, categories, address, city, province, country, postal_code, latitude, longitude
FROM places
`

const getPlaceSQL = listPlacesPrefix + `WHERE id = ?`

const listReviewersPrefix = `
SELECT id, username, city, province, created_at
FROM reviewers
`
