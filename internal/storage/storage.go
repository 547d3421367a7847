package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tastingroom/winescore/internal/models"
)

// HighRating is the lowest rating that counts toward a user's history.
const HighRating = 4.0

// Cellar is an in-memory record store of wines and user ratings. Catalog
// order is insertion order and is what candidate lists are returned in.
type Cellar struct {
	wines   map[string]models.WineRecord
	order   []string
	ratings map[string][]models.Rating // by user
	mu      sync.RWMutex
}

func New() *Cellar {
	return &Cellar{
		wines:   make(map[string]models.WineRecord),
		ratings: make(map[string][]models.Rating),
	}
}

// AddWine stores a wine, assigning an ID when it has none, and returns the
// stored record. Re-adding an ID replaces the record in place.
func (c *Cellar) AddWine(wine models.WineRecord) models.WineRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wine.ID == "" {
		wine.ID = uuid.NewString()
	}
	if _, exists := c.wines[wine.ID]; !exists {
		c.order = append(c.order, wine.ID)
	}
	c.wines[wine.ID] = wine
	return wine
}

// AddRating records a rating for a wine already in the cellar.
func (c *Cellar) AddRating(r models.Rating) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r.UserID == "" {
		return fmt.Errorf("rating has no user")
	}
	if _, exists := c.wines[r.WineID]; !exists {
		return fmt.Errorf("rating for unknown wine: %s", r.WineID)
	}
	c.ratings[r.UserID] = append(c.ratings[r.UserID], r)
	return nil
}

func (c *Cellar) Get(wineID string) (models.WineRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	wine, exists := c.wines[wineID]
	return wine, exists
}

// Wines returns every wine in catalog order.
func (c *Cellar) Wines() []models.WineRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]models.WineRecord, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.wines[id])
	}
	return result
}

// History returns the wines userID rated HighRating or better, most
// recently rated first, at most limit of them (limit <= 0 means no bound).
// A wine rated several times appears once, at its latest qualifying rating.
func (c *Cellar) History(userID string, limit int) []models.WineRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var high []models.Rating
	for _, r := range c.ratings[userID] {
		if r.Score >= HighRating {
			high = append(high, r)
		}
	}
	sort.SliceStable(high, func(i, j int) bool {
		return high[i].RatedAt.After(high[j].RatedAt)
	})

	seen := make(map[string]bool, len(high))
	var result []models.WineRecord
	for _, r := range high {
		if seen[r.WineID] {
			continue
		}
		seen[r.WineID] = true
		result = append(result, c.wines[r.WineID])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

// Candidates returns the catalog in order, minus every wine userID has
// rated at any score.
func (c *Cellar) Candidates(userID string) []models.WineRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rated := make(map[string]bool, len(c.ratings[userID]))
	for _, r := range c.ratings[userID] {
		rated[r.WineID] = true
	}

	result := make([]models.WineRecord, 0, len(c.order))
	for _, id := range c.order {
		if !rated[id] {
			result = append(result, c.wines[id])
		}
	}
	return result
}
