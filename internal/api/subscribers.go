package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourdailydose/dailydose/internal/db"
	"github.com/yourdailydose/dailydose/internal/delivery"
)

type subscribeRequest struct {
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Persona         string   `json:"persona"`
	Categories      []string `json:"categories"`
	TonePreference  string   `json:"tone_preference"`
	DeliveryTime    string   `json:"delivery_time"`
	DeliveryMethods []string `json:"delivery_methods"`
	PersonalGoals   []string `json:"personal_goals"`
}

type subscribeResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Subscribe creates a subscriber and sends the welcome email.
func (h *handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.FirstName == "" {
		respondError(w, http.StatusBadRequest, "first_name is required")
		return
	}
	if req.Email == "" && req.Phone == "" {
		respondError(w, http.StatusBadRequest, "an email address or phone number is required")
		return
	}
	if req.Email != "" && !delivery.ValidEmail(req.Email) {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if req.Phone != "" && !delivery.ValidPhone(req.Phone) {
		respondError(w, http.StatusBadRequest, "invalid phone number")
		return
	}
	if len(req.Categories) == 0 {
		respondError(w, http.StatusBadRequest, "at least one category is required")
		return
	}

	phone := ""
	if req.Phone != "" {
		phone = delivery.NormalizePhone(req.Phone)
	}

	sub, err := h.store.CreateSubscriber(r.Context(), db.CreateSubscriberParams{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           phone,
		Persona:         strings.TrimSpace(req.Persona),
		Categories:      req.Categories,
		TonePreference:  req.TonePreference,
		DeliveryTime:    req.DeliveryTime,
		DeliveryMethods: req.DeliveryMethods,
		PersonalGoals:   req.PersonalGoals,
	})
	if err != nil {
		slog.Error("failed to create subscriber", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	// The signup succeeded; a welcome email failure is logged, not
	// surfaced.
	if sub.Email != "" {
		if result := h.dispatcher.SendWelcome(r.Context(), sub.ID); !result.Success {
			slog.Warn("welcome email failed",
				"subscriber_id", sub.ID,
				"error", result.Error,
			)
		}
	}

	respondJSON(w, http.StatusCreated, subscribeResponse{
		ID: sub.ID,
		Message: fmt.Sprintf("Welcome aboard, %s! Your personalized daily dose will arrive at %s.",
			sub.FirstName, delivery.FormatDeliveryTime(sub.DeliveryTime)),
	})
}
