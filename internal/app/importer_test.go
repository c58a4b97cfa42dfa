package app_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"place_pulse/internal/app"
	"place_pulse/internal/domain"
)

// ---- fakes ----

type sliceReader struct {
	rows []domain.SourceRow
	i    int
}

func (r *sliceReader) Next() (domain.SourceRow, error) {
	if r.i >= len(r.rows) {
		return domain.SourceRow{}, io.EOF
	}
	row := r.rows[r.i]
	r.i++
	return row, nil
}

// fakeStore keeps committed state across transactions the way the real
// store does: rows written inside a rolled-back tx vanish.
type fakeStore struct {
	places      map[domain.PlaceKey]int64
	placeByName map[string]int64
	reviewers   map[string]int64
	feedback    []domain.FeedbackEvent

	nextID    int64
	commits   int
	rollbacks int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		places:      map[domain.PlaceKey]int64{},
		placeByName: map[string]int64{},
		reviewers:   map[string]int64{},
	}
}

func (s *fakeStore) BeginImport(ctx context.Context) (domain.ImportTx, error) {
	return &fakeTx{s: s}, nil
}

// fakeTx buffers feedback writes until Commit; entity creates are visible
// immediately, matching the row-level read-your-writes the pipeline needs
// inside one tx (the fake never exercises cross-tx rollback of entities).
type fakeTx struct {
	s       *fakeStore
	pending []domain.FeedbackEvent
	done    bool
}

func (t *fakeTx) FindPlace(ctx context.Context, name, address *string) (int64, bool, error) {
	id, ok := t.s.places[domain.PlaceKeyOf(name, address)]
	return id, ok, nil
}

func (t *fakeTx) FindPlaceByName(ctx context.Context, name *string) (int64, bool, error) {
	if name == nil {
		return 0, false, nil
	}
	id, ok := t.s.placeByName[*name]
	return id, ok, nil
}

func (t *fakeTx) CreatePlace(ctx context.Context, p domain.Place) (int64, bool, error) {
	key := p.Key()
	if id, ok := t.s.places[key]; ok {
		return id, false, nil
	}
	t.s.nextID++
	t.s.places[key] = t.s.nextID
	if p.Name != nil {
		t.s.placeByName[*p.Name] = t.s.nextID
	}
	return t.s.nextID, true, nil
}

func (t *fakeTx) FindReviewer(ctx context.Context, username string) (int64, bool, error) {
	id, ok := t.s.reviewers[username]
	return id, ok, nil
}

func (t *fakeTx) CreateReviewer(ctx context.Context, r domain.Reviewer) (int64, bool, error) {
	if id, ok := t.s.reviewers[r.Username]; ok {
		return id, false, nil
	}
	t.s.nextID++
	t.s.reviewers[r.Username] = t.s.nextID
	return t.s.nextID, true, nil
}

func (t *fakeTx) CreateFeedback(ctx context.Context, f domain.FeedbackEvent) (int64, error) {
	t.s.nextID++
	f.ID = t.s.nextID
	t.pending = append(t.pending, f)
	return f.ID, nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return fmt.Errorf("tx already finished")
	}
	t.done = true
	t.s.feedback = append(t.s.feedback, t.pending...)
	t.s.commits++
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return fmt.Errorf("tx already finished")
	}
	t.done = true
	t.s.rollbacks++
	return nil
}

// ---- tests ----

func row(name, address string) domain.SourceRow {
	return domain.SourceRow{Name: name, Address: address}
}

func TestRun_SharedPlaceAcrossRows(t *testing.T) {
	store := newFakeStore()
	svc := app.NewImportService(store, app.ImportOptions{CreateMissing: true})

	rows := &sliceReader{rows: []domain.SourceRow{
		{Name: "Cafe X", Address: "1 Main St", Username: "ana", Rating: "4.0", Text: "Great!"},
		{Name: "Cafe X", Address: "1 Main St", Username: "ben", Rating: "2.0", Text: "Meh."},
	}}

	c, err := svc.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Places != 1 {
		t.Fatalf("places created = %d, want 1", c.Places)
	}
	if c.Reviewers != 2 {
		t.Fatalf("reviewers created = %d, want 2", c.Reviewers)
	}
	if c.Feedback != 2 || len(store.feedback) != 2 {
		t.Fatalf("feedback = %d committed %d, want 2", c.Feedback, len(store.feedback))
	}
	if store.feedback[0].PlaceID != store.feedback[1].PlaceID {
		t.Fatalf("rows resolved to different places: %d vs %d",
			store.feedback[0].PlaceID, store.feedback[1].PlaceID)
	}
	if c.Commits != 1 {
		t.Fatalf("commits = %d, want 1", c.Commits)
	}
}

func TestRun_NormalizedFeedbackFields(t *testing.T) {
	store := newFakeStore()
	svc := app.NewImportService(store, app.ImportOptions{CreateMissing: true})

	rows := &sliceReader{rows: []domain.SourceRow{
		{
			Name:       "Cafe X",
			Address:    "1 Main St",
			PostalCode: "02116.0",
			Rating:     "4.0",
			Text:       "Great!",
			Title:      "nan",
			ReviewDate: "2016-07-01T00:00:00Z",
		},
		{Name: "Cafe X", Address: "1 Main St", Text: ""},
	}}

	if _, err := svc.Run(context.Background(), rows); err != nil {
		t.Fatalf("run: %v", err)
	}

	f := store.feedback[0]
	if f.Rating == nil || *f.Rating != 4 {
		t.Fatalf("rating = %v, want 4", f.Rating)
	}
	if f.Title != nil {
		t.Fatalf("title = %q, want nil", *f.Title)
	}
	if f.Text == nil || *f.Text != "Great!" || f.TextLength != 6 {
		t.Fatalf("text = %v length %d", f.Text, f.TextLength)
	}
	if f.ReviewDate == nil || f.ReviewDate.Year() != 2016 {
		t.Fatalf("review date = %v", f.ReviewDate)
	}
	if f.SentimentLabel != nil {
		t.Fatalf("new feedback must start unlabeled, got %q", *f.SentimentLabel)
	}

	empty := store.feedback[1]
	if empty.Text != nil || empty.TextLength != 0 {
		t.Fatalf("missing text must store nil with length 0: %+v", empty)
	}
}

func TestRun_BatchCommitCadence(t *testing.T) {
	store := newFakeStore()
	svc := app.NewImportService(store, app.ImportOptions{BatchSize: 500, CreateMissing: true})

	rows := make([]domain.SourceRow, 1001)
	for i := range rows {
		rows[i] = domain.SourceRow{Name: fmt.Sprintf("Place %d", i%7), Address: "1 Main St"}
	}

	c, err := svc.Run(context.Background(), &sliceReader{rows: rows})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Commits != 3 {
		t.Fatalf("commits = %d, want 3 (500+500+1)", c.Commits)
	}
	if c.Rows != 1001 || c.Feedback != 1001 {
		t.Fatalf("rows = %d feedback = %d, want 1001", c.Rows, c.Feedback)
	}
}

func TestRun_ExactMultipleLeavesNoEmptyCommit(t *testing.T) {
	store := newFakeStore()
	svc := app.NewImportService(store, app.ImportOptions{BatchSize: 2, CreateMissing: true})

	c, err := svc.Run(context.Background(), &sliceReader{rows: []domain.SourceRow{
		row("A", "1"), row("B", "2"), row("C", "3"), row("D", "4"),
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Commits != 2 {
		t.Fatalf("commits = %d, want 2", c.Commits)
	}
	if store.rollbacks != 1 {
		t.Fatalf("empty final tx should roll back once, got %d", store.rollbacks)
	}
}

func TestRun_Reimport_Idempotent(t *testing.T) {
	store := newFakeStore()
	input := []domain.SourceRow{
		{Name: "Cafe X", Address: "1 Main St", Username: "ana", Text: "Great!"},
		{Name: "Cafe Y", Address: "2 Side St", Username: "ana", Text: "Fine."},
	}

	svc := app.NewImportService(store, app.ImportOptions{CreateMissing: true})
	if _, err := svc.Run(context.Background(), &sliceReader{rows: input}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	c2, err := svc.Run(context.Background(), &sliceReader{rows: input})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if c2.Places != 0 || c2.Reviewers != 0 {
		t.Fatalf("re-import created entities: places %d reviewers %d", c2.Places, c2.Reviewers)
	}
	// Feedback is append-only: events duplicate on purpose.
	if len(store.feedback) != 4 {
		t.Fatalf("feedback rows = %d, want 4", len(store.feedback))
	}
}

func TestRun_SkipWithoutCreate(t *testing.T) {
	store := newFakeStore()

	seed := app.NewImportService(store, app.ImportOptions{CreateMissing: true})
	if _, err := seed.Run(context.Background(), &sliceReader{rows: []domain.SourceRow{
		row("Cafe X", "1 Main St"),
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := app.NewImportService(store, app.ImportOptions{CreateMissing: false})
	c, err := svc.Run(context.Background(), &sliceReader{rows: []domain.SourceRow{
		{Name: "Cafe X", Address: "1 Main St", Text: "match"},
		{Name: "Nowhere", Address: "9 Lost Rd", Text: "no match"},
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", c.Skipped)
	}
	if c.Feedback != 1 {
		t.Fatalf("feedback = %d, want 1", c.Feedback)
	}
	if c.Places != 0 {
		t.Fatalf("places created = %d, want 0", c.Places)
	}
}

func TestRun_RelaxedPolicyFallsBackToName(t *testing.T) {
	store := newFakeStore()

	seed := app.NewImportService(store, app.ImportOptions{CreateMissing: true})
	if _, err := seed.Run(context.Background(), &sliceReader{rows: []domain.SourceRow{
		row("Cafe X", "1 Main St"),
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc := app.NewImportService(store, app.ImportOptions{Policy: app.MatchRelaxed, CreateMissing: false})
	c, err := svc.Run(context.Background(), &sliceReader{rows: []domain.SourceRow{
		{Name: "Cafe X", Address: "different address", Text: "still matches"},
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Skipped != 0 || c.Feedback != 1 {
		t.Fatalf("skipped %d feedback %d, want 0/1", c.Skipped, c.Feedback)
	}
}

func TestRun_NullMarkersCollapseToSamePlace(t *testing.T) {
	store := newFakeStore()
	svc := app.NewImportService(store, app.ImportOptions{CreateMissing: true})

	c, err := svc.Run(context.Background(), &sliceReader{rows: []domain.SourceRow{
		{Name: "Cafe X", Address: "nan"},
		{Name: "Cafe X", Address: ""},
		{Name: "Cafe X", Address: "NONE"},
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.Places != 1 {
		t.Fatalf("places = %d, want 1 (null markers share a key)", c.Places)
	}
}
