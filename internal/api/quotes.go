package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/yourdailydose/dailydose/internal/generator"
	"github.com/yourdailydose/dailydose/internal/quotegen"
)

type quoteRequest struct {
	SubscriberID string `json:"subscriber_id"`
	Tone         string `json:"tone"`
}

type quoteResponse struct {
	Quote           *generator.Quote `json:"quote"`
	Greeting        string           `json:"greeting"`
	Personalization string           `json:"personalization"`
	IsUnique        bool             `json:"is_unique"`
}

// QuoteForSubscriber generates a personalized unique quote.
func (h *handlers) QuoteForSubscriber(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.serveQuote(w, r, req)
}

// QuoteForSubscriberGet is the query-param variant for manual testing.
func (h *handlers) QuoteForSubscriberGet(w http.ResponseWriter, r *http.Request) {
	h.serveQuote(w, r, quoteRequest{
		SubscriberID: r.URL.Query().Get("id"),
		Tone:         r.URL.Query().Get("tone"),
	})
}

func (h *handlers) serveQuote(w http.ResponseWriter, r *http.Request, req quoteRequest) {
	if req.SubscriberID == "" {
		respondError(w, http.StatusBadRequest, "subscriber_id is required")
		return
	}

	sub, err := h.store.GetActiveSubscriber(r.Context(), req.SubscriberID)
	if err != nil {
		respondError(w, http.StatusNotFound, "subscriber not found or inactive")
		return
	}

	tone := generator.ParseTone(req.Tone)
	if req.Tone == "" {
		tone = generator.ParseTone(sub.TonePreference)
	}

	quote := h.quotes.GenerateUnique(r.Context(), quotegen.Request{
		SubscriberID: sub.ID,
		Persona:      sub.Persona,
		Categories:   sub.Categories,
		Tone:         tone,
	})

	respondJSON(w, http.StatusOK, quoteResponse{
		Quote:    quote,
		Greeting: fmt.Sprintf("Good morning, %s!", sub.FirstName),
		Personalization: fmt.Sprintf("As a %s, this %s quote is specially curated for you.",
			strings.ToLower(sub.Persona), strings.ToLower(quote.Category)),
		IsUnique: true,
	})
}
