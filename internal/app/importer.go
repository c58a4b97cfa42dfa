package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"place_pulse/internal/adapters/observability"
	"place_pulse/internal/domain"
)

// MatchPolicy selects the place natural-key contract. Strict matches on
// (name, address); relaxed falls back to a name-only lookup when the strict
// match misses.
type MatchPolicy string

const (
	MatchStrict  MatchPolicy = "strict"
	MatchRelaxed MatchPolicy = "relaxed"
)

const DefaultBatchSize = 500

type ImportOptions struct {
	BatchSize int
	Policy    MatchPolicy
	// CreateMissing controls what a place resolution miss means: get-or-create
	// (full import) or skip-and-count (append-only feedback import).
	CreateMissing bool
}

type ImportCounters struct {
	Rows      int64
	Places    int64
	Reviewers int64
	Feedback  int64
	Skipped   int64
	Commits   int
}

// ImportService drives the row pipeline: normalize, resolve entities, record
// feedback, commit in fixed-size transactional batches. Processing is
// strictly sequential; the resolver's lookups depend on that.
type ImportService struct {
	store domain.ImportStore
	opts  ImportOptions
}

func NewImportService(store domain.ImportStore, opts ImportOptions) *ImportService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Policy == "" {
		opts.Policy = MatchStrict
	}
	return &ImportService{store: store, opts: opts}
}

// importRun is the explicit mutable state of one run: the open batch
// transaction, the natural-key caches, and the cumulative counters.
type importRun struct {
	tx        domain.ImportTx
	places    map[domain.PlaceKey]int64
	reviewers map[string]int64
	counters  ImportCounters
}

// Run processes every row of the extract in input order. A commit failure
// aborts the run; everything since the last successful commit is lost and
// the caller retries the whole run (idempotent for places and reviewers,
// not for feedback events).
func (s *ImportService) Run(ctx context.Context, rows domain.RowReader) (ImportCounters, error) {
	tx, err := s.store.BeginImport(ctx)
	if err != nil {
		return ImportCounters{}, fmt.Errorf("begin import: %w", err)
	}
	run := &importRun{
		tx:        tx,
		places:    make(map[domain.PlaceKey]int64),
		reviewers: make(map[string]int64),
	}

	pending := 0
	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = run.tx.Rollback()
			return run.counters, fmt.Errorf("read row %d: %w", run.counters.Rows+1, err)
		}
		run.counters.Rows++

		if err := s.importRow(ctx, run, row); err != nil {
			_ = run.tx.Rollback()
			return run.counters, err
		}

		pending++
		if pending >= s.opts.BatchSize {
			if err := run.tx.Commit(); err != nil {
				return run.counters, fmt.Errorf("commit import batch: %w", err)
			}
			run.counters.Commits++
			log.Info().
				Int64("rows", run.counters.Rows).
				Int64("places", run.counters.Places).
				Int64("reviewers", run.counters.Reviewers).
				Int64("feedback", run.counters.Feedback).
				Int64("skipped", run.counters.Skipped).
				Msg("import batch committed")

			if run.tx, err = s.store.BeginImport(ctx); err != nil {
				return run.counters, fmt.Errorf("begin import batch: %w", err)
			}
			pending = 0
		}
	}

	// Final partial batch.
	if pending == 0 {
		_ = run.tx.Rollback()
		return run.counters, nil
	}
	if err := run.tx.Commit(); err != nil {
		return run.counters, fmt.Errorf("commit final import batch: %w", err)
	}
	run.counters.Commits++
	return run.counters, nil
}

func (s *ImportService) importRow(ctx context.Context, run *importRun, row domain.SourceRow) error {
	name := Nullify(row.Name)
	address := Nullify(row.Address)

	placeID, ok, err := s.resolvePlace(ctx, run, name, address, row)
	if err != nil {
		return err
	}
	if !ok {
		run.counters.Skipped++
		observability.ObserveImportRow("skipped")
		log.Debug().Str("name", deref(name)).Str("address", deref(address)).Msg("no place match, row skipped")
		return nil
	}

	var reviewerID *int64
	if username := Nullify(row.Username); username != nil {
		id, err := s.resolveReviewer(ctx, run, *username, row)
		if err != nil {
			return err
		}
		reviewerID = &id
	}

	text := Nullify(row.Text)
	f := domain.FeedbackEvent{
		PlaceID:    placeID,
		ReviewerID: reviewerID,
		Rating:     IntOrNull(row.Rating),
		Title:      Nullify(row.Title),
		Text:       text,
		ReviewDate: TimestampOrNull(row.ReviewDate),
		TextLength: textLength(text),
	}
	if _, err := run.tx.CreateFeedback(ctx, f); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	run.counters.Feedback++
	observability.ObserveImportRow("imported")
	observability.ObserveEntityCreate("feedback")
	return nil
}

// resolvePlace is a two-tier lookup: in-run cache, then the store. On a
// store miss it either creates the place through the conditional insert or
// reports no match, depending on CreateMissing.
func (s *ImportService) resolvePlace(ctx context.Context, run *importRun, name, address *string, row domain.SourceRow) (int64, bool, error) {
	key := domain.PlaceKeyOf(name, address)
	if id, ok := run.places[key]; ok {
		return id, true, nil
	}

	id, ok, err := run.tx.FindPlace(ctx, name, address)
	if err != nil {
		return 0, false, fmt.Errorf("find place: %w", err)
	}
	if !ok && s.opts.Policy == MatchRelaxed {
		if id, ok, err = run.tx.FindPlaceByName(ctx, name); err != nil {
			return 0, false, fmt.Errorf("find place by name: %w", err)
		}
	}
	if !ok {
		if !s.opts.CreateMissing {
			return 0, false, nil
		}
		p := domain.Place{
			Name:       name,
			Categories: Nullify(row.Categories),
			Address:    address,
			City:       Nullify(row.City),
			Province:   Nullify(row.Province),
			Country:    Nullify(row.Country),
			PostalCode: CanonicalPostal(row.PostalCode),
			Latitude:   FloatOrNull(row.Latitude),
			Longitude:  FloatOrNull(row.Longitude),
		}
		var created bool
		if id, created, err = run.tx.CreatePlace(ctx, p); err != nil {
			return 0, false, fmt.Errorf("create place: %w", err)
		}
		if created {
			run.counters.Places++
			observability.ObserveEntityCreate("place")
		}
	}
	run.places[key] = id
	return id, true, nil
}

func (s *ImportService) resolveReviewer(ctx context.Context, run *importRun, username string, row domain.SourceRow) (int64, error) {
	if id, ok := run.reviewers[username]; ok {
		return id, nil
	}

	id, ok, err := run.tx.FindReviewer(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("find reviewer: %w", err)
	}
	if !ok {
		r := domain.Reviewer{
			Username: username,
			City:     Nullify(row.UserCity),
			Province: Nullify(row.UserProvince),
		}
		var created bool
		if id, created, err = run.tx.CreateReviewer(ctx, r); err != nil {
			return 0, fmt.Errorf("create reviewer: %w", err)
		}
		if created {
			run.counters.Reviewers++
			observability.ObserveEntityCreate("reviewer")
		}
	}
	run.reviewers[username] = id
	return id, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
