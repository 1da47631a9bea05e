package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/previewdeck/internal/apperr"
	"github.com/starford/previewdeck/internal/models"
)

func TestAssemble_SortedByRecency(t *testing.T) {
	jan := func(day, hour int) time.Time {
		return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
	}
	acc := Aggregate([]models.Preview{
		preview("Song A", "a1.mp3", jan(1, 12)),
		preview("Song A", "a2.mp3", jan(5, 9)),
		preview("Song B", "b1.mp3", jan(3, 0)),
	})

	projects := Assemble(acc)
	if len(projects) != 2 {
		t.Fatalf("len = %d, want 2", len(projects))
	}

	if projects[0].Name != "Song A" || projects[1].Name != "Song B" {
		t.Fatalf("order = [%s, %s], want [Song A, Song B]", projects[0].Name, projects[1].Name)
	}
	if !projects[0].LastUpdated.Equal(jan(5, 9)) {
		t.Errorf("Song A lastUpdated = %v", projects[0].LastUpdated)
	}
	if !projects[1].LastUpdated.Equal(jan(3, 0)) {
		t.Errorf("Song B lastUpdated = %v", projects[1].LastUpdated)
	}

	versions := projects[0].Versions
	if versions[0].Filename != "a2.mp3" || versions[1].Filename != "a1.mp3" {
		t.Errorf("Song A versions = [%s, %s], want [a2.mp3, a1.mp3]", versions[0].Filename, versions[1].Filename)
	}
	if projects[0].LatestPreview.Filename != versions[0].Filename {
		t.Error("latestPreview must equal versions[0]")
	}
}

func TestAssemble_AdjacentOrderingInvariant(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var input []models.Preview
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			input = append(input, preview(
				[]string{"Alpha", "Beta", "Gamma", "Delta"}[i],
				"v.mp3",
				base.Add(time.Duration((j*7+i*3)%13)*time.Hour),
			))
		}
	}

	projects := Assemble(Aggregate(input))
	for i := 0; i+1 < len(projects); i++ {
		if projects[i].LastUpdated.Before(projects[i+1].LastUpdated) {
			t.Errorf("projects out of order at %d: %v < %v", i, projects[i].LastUpdated, projects[i+1].LastUpdated)
		}
	}
	for _, proj := range projects {
		for i := 0; i+1 < len(proj.Versions); i++ {
			if proj.Versions[i].ParsedDate.Before(proj.Versions[i+1].ParsedDate) {
				t.Errorf("%s versions out of order at %d", proj.Name, i)
			}
		}
	}
}

func TestServiceProjects_EndToEnd(t *testing.T) {
	b := newFakeBucket()
	b.putMetadata("a1.json", models.PreviewMetadata{Project: "Song A", Timestamp: "20240101_120000", Filename: "a1.mp3"})
	b.putMetadata("a2.json", models.PreviewMetadata{Project: "Song A", Timestamp: "20240105_090000", Filename: "a2.mp3"})
	b.putMetadata("b1.json", models.PreviewMetadata{Project: "Song B", Timestamp: "20240103_000000", Filename: "b1.mp3"})

	svc := NewService(b, discardLogger())
	projects, err := svc.Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("len = %d, want 2", len(projects))
	}
	if projects[0].Name != "Song A" {
		t.Errorf("first project = %q", projects[0].Name)
	}
	want := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	if !projects[0].LastUpdated.Equal(want) {
		t.Errorf("Song A lastUpdated = %v, want %v", projects[0].LastUpdated, want)
	}
	if projects[0].Versions[0].Filename != "a2.mp3" {
		t.Errorf("Song A newest version = %q", projects[0].Versions[0].Filename)
	}
}

func TestServiceProjects_NoBackend(t *testing.T) {
	svc := NewService(nil, discardLogger())
	if _, err := svc.Projects(context.Background()); !errors.Is(err, apperr.ErrNoBackend) {
		t.Errorf("err = %v, want ErrNoBackend", err)
	}
	if svc.Configured() {
		t.Error("Configured should be false for nil bucket")
	}
}
