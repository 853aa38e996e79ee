package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"trainercard/models"
	"trainercard/pkg/card"
	"trainercard/pkg/progress"
)

type fakeReader struct {
	card card.ParsedCard
	err  error
}

func (f fakeReader) RecognizeContext(ctx context.Context, data []byte) (card.ParsedCard, error) {
	return f.card, f.err
}

type fakeStore struct {
	written   bool
	recordErr error
	records   []card.ParsedCard
	marked    []models.ProcessedImage
}

func (s *fakeStore) Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error) {
	if s.recordErr != nil {
		return false, s.recordErr
	}
	s.records = append(s.records, c)
	return s.written, nil
}

func (s *fakeStore) MarkProcessed(ctx context.Context, p models.ProcessedImage) error {
	s.marked = append(s.marked, p)
	return nil
}

func task(t *testing.T) *asynq.Task {
	t.Helper()
	tk, err := NewRecognizeTask(RecognizePayload{
		JobID:    "job-1",
		UserID:   7,
		Filename: "card.png",
		Image:    []byte("png"),
		PostedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Digest:   progress.Digest([]byte("png")),
	}, "cards")
	if err != nil {
		t.Fatal(err)
	}
	return tk
}

var ash = card.ParsedCard{Name: "ASH", Badges: 3, Time: "2:15", Pokedex: 11}

func TestHandlerRecords(t *testing.T) {
	store := &fakeStore{written: true}
	h := &Handler{Reader: fakeReader{card: ash}, Store: store, Timeout: time.Second}
	if err := h.ProcessTask(context.Background(), task(t)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.records) != 1 || store.records[0] != ash {
		t.Fatalf("records = %v", store.records)
	}
	if len(store.marked) != 1 || store.marked[0].Outcome != models.OutcomeRecorded || *store.marked[0].UserID != 7 {
		t.Fatalf("marked = %+v", store.marked)
	}
}

func TestHandlerStaleCard(t *testing.T) {
	store := &fakeStore{written: false}
	h := &Handler{Reader: fakeReader{card: ash}, Store: store}
	if err := h.ProcessTask(context.Background(), task(t)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if store.marked[0].Outcome != models.OutcomeStale {
		t.Fatalf("outcome = %q", store.marked[0].Outcome)
	}
}

func TestHandlerFailureSkipsRetry(t *testing.T) {
	store := &fakeStore{}
	fail := &card.Failure{Kind: card.NotACardFailure, Reason: "no header"}
	h := &Handler{Reader: fakeReader{err: fail}, Store: store}
	err := h.ProcessTask(context.Background(), task(t))
	if !errors.Is(err, asynq.SkipRetry) || !errors.Is(err, card.ErrNotACard) {
		t.Fatalf("got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("failure was recorded")
	}
	if len(store.marked) != 1 || store.marked[0].Outcome != "not_a_card" || store.marked[0].Reason == "" {
		t.Fatalf("marked = %+v", store.marked)
	}
}

func TestHandlerEngineErrorRetries(t *testing.T) {
	store := &fakeStore{}
	h := &Handler{Reader: fakeReader{err: context.DeadlineExceeded}, Store: store}
	err := h.ProcessTask(context.Background(), task(t))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("got %v", err)
	}
	if len(store.marked) != 0 {
		t.Fatalf("retryable error marked the image processed")
	}
}

func TestHandlerUnknownUser(t *testing.T) {
	store := &fakeStore{recordErr: progress.ErrUserNotFound}
	h := &Handler{Reader: fakeReader{card: ash}, Store: store}
	if err := h.ProcessTask(context.Background(), task(t)); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("got %v", err)
	}
}

func TestHandlerBadPayload(t *testing.T) {
	h := &Handler{Reader: fakeReader{card: ash}, Store: &fakeStore{}}
	err := h.ProcessTask(context.Background(), asynq.NewTask(TypeRecognize, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("got %v", err)
	}
}

func TestRecognizeTaskPayload(t *testing.T) {
	tk := task(t)
	if tk.Type() != TypeRecognize {
		t.Fatalf("type = %q", tk.Type())
	}
	var raw map[string]any
	if err := json.Unmarshal(tk.Payload(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"job_id", "user_id", "filename", "image", "posted_at", "digest"} {
		if _, ok := raw[k]; !ok {
			t.Errorf("payload missing %q", k)
		}
	}
	if _, err := NewRecognizeTask(RecognizePayload{}, ""); err == nil {
		t.Fatalf("empty job id accepted")
	}
}

func TestRetryDelay(t *testing.T) {
	want := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second, 40 * time.Second, time.Minute, time.Minute}
	for n, w := range want {
		if got := retryDelay(n, nil, nil); got != w {
			t.Errorf("retry %d: %v, want %v", n, got, w)
		}
	}
}
