package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tastingroom/winescore/internal/models"
)

var day0 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *Cellar {
	t.Helper()
	c := New()
	for _, id := range []string{"w1", "w2", "w3", "w4"} {
		c.AddWine(models.WineRecord{ID: id, Name: "Wine " + id})
	}
	ratings := []models.Rating{
		{UserID: "ana", WineID: "w1", Score: 5, RatedAt: day0},
		{UserID: "ana", WineID: "w2", Score: 3, RatedAt: day0.Add(24 * time.Hour)},
		{UserID: "ana", WineID: "w3", Score: 4, RatedAt: day0.Add(48 * time.Hour)},
		{UserID: "ben", WineID: "w4", Score: 5, RatedAt: day0},
	}
	for _, r := range ratings {
		if err := c.AddRating(r); err != nil {
			t.Fatalf("AddRating failed: %v", err)
		}
	}
	return c
}

func ids(wines []models.WineRecord) []string {
	out := make([]string, 0, len(wines))
	for _, w := range wines {
		out = append(out, w.ID)
	}
	return out
}

func TestAddWineAssignsID(t *testing.T) {
	c := New()
	stored := c.AddWine(models.WineRecord{Name: "Nameless"})
	if stored.ID == "" {
		t.Fatal("Expected an ID to be assigned")
	}
	if got, ok := c.Get(stored.ID); !ok || got.Name != "Nameless" {
		t.Errorf("Expected to find stored wine, got %+v, %v", got, ok)
	}
}

func TestAddWineReplacesInPlace(t *testing.T) {
	c := New()
	c.AddWine(models.WineRecord{ID: "a", Name: "first"})
	c.AddWine(models.WineRecord{ID: "b"})
	c.AddWine(models.WineRecord{ID: "a", Name: "second"})

	wines := c.Wines()
	if fmt.Sprint(ids(wines)) != "[a b]" {
		t.Errorf("Expected order [a b], got %v", ids(wines))
	}
	if wines[0].Name != "second" {
		t.Errorf("Expected replaced record, got %s", wines[0].Name)
	}
}

func TestAddRatingValidation(t *testing.T) {
	c := New()
	c.AddWine(models.WineRecord{ID: "w1"})

	if err := c.AddRating(models.Rating{UserID: "ana", WineID: "missing", Score: 5}); err == nil {
		t.Error("Expected error for unknown wine")
	}
	if err := c.AddRating(models.Rating{WineID: "w1", Score: 5}); err == nil {
		t.Error("Expected error for missing user")
	}
}

func TestHistory(t *testing.T) {
	c := seeded(t)

	tests := []struct {
		user     string
		limit    int
		expected string
	}{
		{"ana", 0, "[w3 w1]"},
		{"ana", 1, "[w3]"},
		{"ben", 20, "[w4]"},
		{"nobody", 20, "[]"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.user, tt.limit), func(t *testing.T) {
			if got := fmt.Sprint(ids(c.History(tt.user, tt.limit))); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestHistoryDeduplicatesRerated(t *testing.T) {
	c := seeded(t)
	if err := c.AddRating(models.Rating{UserID: "ana", WineID: "w1", Score: 4.5, RatedAt: day0.Add(72 * time.Hour)}); err != nil {
		t.Fatalf("AddRating failed: %v", err)
	}
	if got := fmt.Sprint(ids(c.History("ana", 0))); got != "[w1 w3]" {
		t.Errorf("Expected [w1 w3], got %s", got)
	}
}

func TestCandidatesExcludeRated(t *testing.T) {
	c := seeded(t)

	if got := fmt.Sprint(ids(c.Candidates("ana"))); got != "[w4]" {
		t.Errorf("Expected [w4] for ana, got %s", got)
	}
	if got := fmt.Sprint(ids(c.Candidates("ben"))); got != "[w1 w2 w3]" {
		t.Errorf("Expected [w1 w2 w3] for ben, got %s", got)
	}
	if got := len(c.Candidates("nobody")); got != 4 {
		t.Errorf("Expected whole catalog for new user, got %d", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := c.AddWine(models.WineRecord{ID: fmt.Sprintf("w%d", i)})
			_ = c.AddRating(models.Rating{UserID: "u", WineID: w.ID, Score: 4, RatedAt: day0.Add(time.Duration(i) * time.Minute)})
			_ = c.Candidates("u")
			_ = c.History("u", 20)
		}(i)
	}
	wg.Wait()

	if got := len(c.History("u", 20)); got != 20 {
		t.Errorf("Expected history bounded to 20, got %d", got)
	}
	if got := len(c.Candidates("u")); got != 0 {
		t.Errorf("Expected no candidates, got %d", got)
	}
}
