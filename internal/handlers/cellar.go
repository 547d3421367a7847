package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/tastingroom/winescore/internal/models"
)

func (h *Handler) HandleWines(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.writeJSON(w, h.cellar.Wines())
	case "POST":
		var wine models.WineRecord
		if !h.decodeJSON(w, r, &wine) {
			return
		}
		w.WriteHeader(http.StatusCreated)
		h.writeJSON(w, h.cellar.AddWine(wine))
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleWineDetail(w http.ResponseWriter, r *http.Request) {
	wineID := strings.TrimPrefix(r.URL.Path, "/api/wines/")

	wine, ok := h.cellar.Get(wineID)
	if !ok {
		h.writeError(w, "Wine not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, wine)
	case "PUT":
		var updated models.WineRecord
		if !h.decodeJSON(w, r, &updated) {
			return
		}
		updated.ID = wineID
		h.writeJSON(w, h.cellar.AddWine(updated))
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rating models.Rating
	if !h.decodeJSON(w, r, &rating) {
		return
	}
	if rating.RatedAt.IsZero() {
		rating.RatedAt = time.Now()
	}

	if err := h.cellar.AddRating(rating); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, rating)
}
