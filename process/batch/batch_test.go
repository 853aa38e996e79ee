package batch

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"trainercard/models"
	"trainercard/pkg/card"
	"trainercard/pkg/progress"
)

type memStore struct {
	mu        sync.Mutex
	processed map[string]models.ProcessedImage
	records   []card.ParsedCard
}

func newMemStore() *memStore {
	return &memStore{processed: map[string]models.ProcessedImage{}}
}

func (m *memStore) IsProcessed(ctx context.Context, digest string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.processed[digest]
	return ok, nil
}

func (m *memStore) MarkProcessed(ctx context.Context, p models.ProcessedImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.processed[p.Digest]; !ok {
		m.processed[p.Digest] = p
	}
	return nil
}

func (m *memStore) Record(ctx context.Context, userID uint, c card.ParsedCard, postedAt time.Time, source string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, c)
	return true, nil
}

// byContent recognizes files by their literal content.
type byContent map[string]error

func (b byContent) RecognizeContext(ctx context.Context, data []byte) (card.ParsedCard, error) {
	if err := b[string(data)]; err != nil {
		return card.ParsedCard{}, err
	}
	return card.ParsedCard{Name: string(data), Badges: 1, Time: "0:30", Pokedex: 4}, nil
}

func writeFile(t *testing.T, dir, name, content string, mod time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(p, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestIsSupportedExt(t *testing.T) {
	cases := map[string]bool{
		"a.png": true, "b.JPG": true, "c.jpeg": true, "d.gif": true, "e.webp": true, "f.bmp": true,
		"notes.txt": false, "noext": false, ".hidden.png": false, "archive.png.zip": false,
	}
	for name, want := range cases {
		if got := isSupportedExt(name); got != want {
			t.Errorf("isSupportedExt(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestListImageFilesOldestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	writeFile(t, dir, "c.png", "c", base.Add(-time.Hour))
	writeFile(t, dir, "a.png", "a", base)
	writeFile(t, dir, "b.jpg", "b", base)
	writeFile(t, dir, "readme.txt", "x", base.Add(-2*time.Hour))
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListImageFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"c.png", "a.png", "b.jpg"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, err := ListImageFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected an error for a missing dir")
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	moveTo := filepath.Join(t.TempDir(), "done")
	now := time.Now()
	writeFile(t, dir, "good.png", "MISTY", now.Add(-3*time.Minute))
	writeFile(t, dir, "blank.png", "blank", now.Add(-2*time.Minute))
	writeFile(t, dir, "seen.png", "seen", now.Add(-time.Minute))
	writeFile(t, dir, "flaky.png", "flaky", now)

	store := newMemStore()
	store.processed[progress.Digest([]byte("seen"))] = models.ProcessedImage{}
	r := &Runner{
		Dir:     dir,
		UserID:  3,
		Store:   store,
		Workers: 2,
		Timeout: time.Second,
		MoveTo:  moveTo,
		Reader: byContent{
			"blank": &card.Failure{Kind: card.NotACardFailure},
			"flaky": context.DeadlineExceeded,
		},
	}
	stats, err := r.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := (Stats{Recorded: 1, Failed: 1, Skipped: 1, Errors: 1}); stats != want {
		t.Fatalf("stats = %v, want %v", stats, want)
	}
	if len(store.records) != 1 || store.records[0].Name != "MISTY" {
		t.Fatalf("records = %+v", store.records)
	}
	if p := store.processed[progress.Digest([]byte("blank"))]; p.Outcome != "not_a_card" || p.UserID == nil || *p.UserID != 3 {
		t.Fatalf("blank marked as %+v", p)
	}
	if _, ok := store.processed[progress.Digest([]byte("flaky"))]; ok {
		t.Fatalf("engine errors must stay unmarked")
	}

	left, _ := ListImageFiles(dir)
	if want := []string{"seen.png", "flaky.png"}; !reflect.DeepEqual(left, want) {
		t.Fatalf("left in place: %v, want %v", left, want)
	}
	moved, _ := ListImageFiles(moveTo)
	if len(moved) != 2 {
		t.Fatalf("moved: %v", moved)
	}
}

func TestScanDryRunLeavesEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", "ASH", time.Now())
	writeFile(t, dir, "b.png", "nope", time.Now())
	r := &Runner{
		Dir:    dir,
		DryRun: true,
		MoveTo: filepath.Join(dir, "done"),
		Reader: byContent{"nope": &card.Failure{Kind: card.IncompleteExtractionFailure}},
	}
	stats, err := r.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Recorded != 1 || stats.Failed != 1 {
		t.Fatalf("stats = %v", stats)
	}
	if left, _ := ListImageFiles(dir); len(left) != 2 {
		t.Fatalf("dry run moved files: %v", left)
	}
}

func TestWatchPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	store := newMemStore()
	r := &Runner{Dir: dir, UserID: 1, Store: store, Reader: byContent{}}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	done := make(chan Stats, 1)
	go func() {
		stats, err := r.Watch(ctx)
		if err != nil {
			t.Error(err)
		}
		done <- stats
	}()

	// give the watcher time to register before the file appears
	time.Sleep(200 * time.Millisecond)
	writeFile(t, dir, "new.png", "BROCK", time.Now())

	deadline := time.After(2 * time.Second)
	for {
		store.mu.Lock()
		n := len(store.records)
		store.mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("file was not processed")
		case <-time.After(50 * time.Millisecond):
		}
	}
	cancel()
	if stats := <-done; stats.Recorded != 1 {
		t.Fatalf("stats = %v", stats)
	}
}
