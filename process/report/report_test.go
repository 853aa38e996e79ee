package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"trainercard/models"
	"trainercard/pkg/progress"
)

func TestWriteTracker(t *testing.T) {
	at := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	rows := []progress.Summary{
		{Username: "ash", TrainerName: "ASH", Badges: 8, Time: "40:01", Pokedex: 151, PostedAt: at},
		{Username: "gary", TrainerName: "GARY", Badges: 7, Time: "38:00", Pokedex: 140, PostedAt: at},
	}
	var buf bytes.Buffer
	if err := WriteTracker(&buf, rows); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: %q", lines)
	}
	if f := strings.Fields(lines[1]); f[0] != "1" || f[1] != "ASH" || f[3] != "8" || f[6] != "2024-03-02T10:00:00Z" {
		t.Fatalf("first row: %q", lines[1])
	}
	if f := strings.Fields(lines[2]); f[0] != "2" || f[1] != "GARY" {
		t.Fatalf("second row: %q", lines[2])
	}
}

func TestWriteProgress(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProgress(&buf, progress.Progress{Username: "misty"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no records") {
		t.Fatalf("output: %s", buf.String())
	}

	buf.Reset()
	p := progress.Progress{Username: "ash", TrainerName: "ASH", Records: []models.BadgeRecord{
		{Badges: 1, Time: "1:05", Pokedex: 9, Source: "a.png"},
		{Badges: 2, Time: "2:15", Pokedex: 11, Source: "b.png"},
	}}
	if err := WriteProgress(&buf, p); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "trainer=ASH") || !strings.Contains(out, "b.png") || strings.Count(out, "\n") != 4 {
		t.Fatalf("output: %s", out)
	}
}
