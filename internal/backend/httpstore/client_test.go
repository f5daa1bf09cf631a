package httpstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/oauth2"

	"kboard/internal/service"
	"kboard/internal/testutil"
)

func newTestClient(t *testing.T, srv *testutil.StoreServer, token string) *Client {
	t.Helper()
	opts := Options{BaseURL: srv.URL, HTTPClient: srv.Client()}
	if token != "" {
		opts.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	}
	c, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func seededStore() *testutil.FakeStore {
	store := testutil.NewFakeStore()
	store.AddColumn("todo", "To Do")
	store.AddColumn("done", "Done")
	store.AddTask("todo", "t1", "Write tests")
	store.AddTask("todo", "t2", "Ship it")
	return store
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "   ", "ftp://example.com", "://nope"} {
		if _, err := New(context.Background(), Options{BaseURL: base}); err == nil {
			t.Errorf("New(%q) should fail", base)
		}
	}
}

func TestFetchBoard(t *testing.T) {
	srv := testutil.NewStoreServer(seededStore())
	defer srv.Close()
	c := newTestClient(t, srv, "")

	snap, err := c.FetchBoard(context.Background())
	if err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if len(snap.Columns) != 2 || len(snap.Tasks) != 2 {
		t.Fatalf("got %d columns, %d tasks", len(snap.Columns), len(snap.Tasks))
	}
	if got := snap.ColumnOrder; len(got) != 2 || got[0] != "todo" || got[1] != "done" {
		t.Errorf("ColumnOrder = %v", got)
	}
	if got := snap.Columns[0].TaskIDs; len(got) != 2 || got[0] != "t1" || got[1] != "t2" {
		t.Errorf("todo taskIds = %v", got)
	}
}

func TestFetchBoardNotFound(t *testing.T) {
	store := testutil.NewUninitializedFakeStore()
	srv := testutil.NewStoreServer(store)
	defer srv.Close()
	c := newTestClient(t, srv, "")

	_, err := c.FetchBoard(context.Background())
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusNotFound {
		t.Errorf("expected StatusError 404, got %#v", err)
	}

	if err := c.InitializeBoard(context.Background()); err != nil {
		t.Fatalf("InitializeBoard: %v", err)
	}
	if _, err := c.FetchBoard(context.Background()); err != nil {
		t.Fatalf("FetchBoard after initialize: %v", err)
	}
}

func TestTaskAndColumnRoundTrip(t *testing.T) {
	store := seededStore()
	srv := testutil.NewStoreServer(store)
	defer srv.Close()
	c := newTestClient(t, srv, "")
	ctx := context.Background()

	task, err := c.CreateTask(ctx, "done", service.TaskFields{
		Title:    "Retro",
		Priority: service.PriorityHigh,
		Tags:     []string{"team"},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == "" || task.Title != "Retro" || task.Priority != service.PriorityHigh {
		t.Fatalf("unexpected task %+v", task)
	}
	if ids := store.Board().Columns["done"].TaskIDs; len(ids) != 1 || ids[0] != task.ID {
		t.Errorf("done column = %v", ids)
	}

	updated, err := c.UpdateTask(ctx, task.ID, service.TaskFields{Title: "Retro notes", Priority: service.PriorityLow})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.ID != task.ID || updated.Title != "Retro notes" {
		t.Errorf("unexpected update %+v", updated)
	}

	if err := c.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, ok := store.Board().Tasks[task.ID]; ok {
		t.Error("task still present after delete")
	}

	col, err := c.CreateColumn(ctx, "Review")
	if err != nil {
		t.Fatalf("CreateColumn: %v", err)
	}
	if col.ID == "" || col.Title != "Review" || len(col.TaskIDs) != 0 {
		t.Fatalf("unexpected column %+v", col)
	}
	renamed, err := c.UpdateColumn(ctx, col.ID, "QA")
	if err != nil {
		t.Fatalf("UpdateColumn: %v", err)
	}
	if renamed.Title != "QA" {
		t.Errorf("renamed title = %q", renamed.Title)
	}
	if err := c.DeleteColumn(ctx, col.ID); err != nil {
		t.Fatalf("DeleteColumn: %v", err)
	}
	if got := store.Board().ColumnOrder; len(got) != 2 {
		t.Errorf("ColumnOrder after delete = %v", got)
	}
}

func TestMoveTask(t *testing.T) {
	store := seededStore()
	srv := testutil.NewStoreServer(store)
	defer srv.Close()
	c := newTestClient(t, srv, "")

	err := c.MoveTask(context.Background(), service.Move{
		TaskID:              "t2",
		SourceColumnID:      "todo",
		SourceIndex:         1,
		DestinationColumnID: "done",
		DestinationIndex:    0,
	})
	if err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	b := store.Board()
	if ids := b.Columns["done"].TaskIDs; len(ids) != 1 || ids[0] != "t2" {
		t.Errorf("done = %v", ids)
	}

	err = c.MoveTask(context.Background(), service.Move{TaskID: "ghost", SourceColumnID: "todo", DestinationColumnID: "done"})
	if !errors.Is(err, service.ErrConflict) {
		t.Errorf("expected ErrConflict for bad move, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	srv := testutil.NewStoreServer(seededStore())
	srv.Token = "secret"
	defer srv.Close()

	if _, err := newTestClient(t, srv, "secret").FetchBoard(context.Background()); err != nil {
		t.Fatalf("FetchBoard with token: %v", err)
	}

	_, err := newTestClient(t, srv, "wrong").FetchBoard(context.Background())
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRequestIDs(t *testing.T) {
	srv := testutil.NewStoreServer(seededStore())
	defer srv.Close()
	c := newTestClient(t, srv, "")

	for i := 0; i < 2; i++ {
		if _, err := c.FetchBoard(context.Background()); err != nil {
			t.Fatalf("FetchBoard: %v", err)
		}
	}
	ids := srv.RequestIDs()
	if len(ids) != 2 {
		t.Fatalf("got %d request ids, want 2", len(ids))
	}
	if ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("request ids should be set and unique: %v", ids)
	}
}

func TestTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer slow.Close()

	c, err := New(context.Background(), Options{BaseURL: slow.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.FetchBoard(context.Background())
	if !errors.Is(err, service.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	store := seededStore()
	store.FetchBoardErr = errors.New("disk on fire")
	srv := testutil.NewStoreServer(store)
	defer srv.Close()

	logger, hook := logtest.NewNullLogger()
	c, err := New(context.Background(), Options{BaseURL: srv.URL, HTTPClient: srv.Client(), Logger: logger})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < breakerTrips; i++ {
		if _, err := c.FetchBoard(context.Background()); !errors.Is(err, service.ErrBackend) {
			t.Fatalf("call %d: expected ErrBackend, got %v", i, err)
		}
	}
	if _, err := c.FetchBoard(context.Background()); !errors.Is(err, service.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once open, got %v", err)
	}
	if got := store.Calls("FetchBoard"); got != breakerTrips {
		t.Errorf("store saw %d calls, want %d", got, breakerTrips)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["to"] != "open" {
		t.Errorf("expected breaker state change warning, got %+v", entry)
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	store := testutil.NewUninitializedFakeStore()
	srv := testutil.NewStoreServer(store)
	defer srv.Close()
	c := newTestClient(t, srv, "")

	for i := 0; i < breakerTrips+2; i++ {
		if _, err := c.FetchBoard(context.Background()); !errors.Is(err, service.ErrNotFound) {
			t.Fatalf("call %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if got := store.Calls("FetchBoard"); got != breakerTrips+2 {
		t.Errorf("store saw %d calls, want %d", got, breakerTrips+2)
	}
}

func TestSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))
	otel.SetTracerProvider(provider)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	srv := testutil.NewStoreServer(testutil.NewUninitializedFakeStore())
	defer srv.Close()
	c := newTestClient(t, srv, "")

	_, _ = c.FetchBoard(context.Background())
	_ = c.InitializeBoard(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Name != "boardstore.fetch_board" || spans[1].Name != "boardstore.initialize_board" {
		t.Errorf("span names = %q, %q", spans[0].Name, spans[1].Name)
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("failed call span status = %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code == codes.Error {
		t.Errorf("successful call span status = %v", spans[1].Status.Code)
	}
}
