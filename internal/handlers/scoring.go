package handlers

import (
	"net/http"

	"github.com/tastingroom/winescore/internal/models"
	"github.com/tastingroom/winescore/internal/recommend"
)

// RecommendationResponse is a ranked candidate list and the explanation of
// its top entry.
type RecommendationResponse struct {
	Recommendations []recommend.Candidate `json:"recommendations"`
	Explanation     string                `json:"explanation"`
}

func (h *Handler) HandleTastings(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Guess  models.Guess      `json:"guess"`
		Actual models.WineRecord `json:"actual"`
		WineID string            `json:"wine_id"` // scores against a cellar wine instead of actual
		Policy string            `json:"policy"`  // built-in policy name
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	actual := request.Actual
	if request.WineID != "" {
		wine, ok := h.cellar.Get(request.WineID)
		if !ok {
			h.writeError(w, "Wine not found", http.StatusNotFound)
			return
		}
		actual = wine
	}

	scorer, err := h.policy.TastingScorer(request.Policy)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, scorer.Score(request.Guess, actual))
}

func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		UserID  string         `json:"user_id"`
		Profile models.Profile `json:"profile"`
		Limit   int            `json:"limit"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}
	if request.UserID == "" {
		h.writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	candidates := h.cellar.Candidates(request.UserID)
	history := h.cellar.History(request.UserID, h.historyLimit)
	ranked, explanation := h.recommender.Rank(candidates, request.Profile, history, request.Limit)

	h.writeJSON(w, RecommendationResponse{Recommendations: ranked, Explanation: explanation})
}

func (h *Handler) HandleCorrections(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Text string `json:"text"`
	}
	if !h.decodeJSON(w, r, &request) {
		return
	}

	h.writeJSON(w, map[string]string{"text": h.corrector.Correct(request.Text)})
}
