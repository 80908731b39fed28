// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/moviematch/moviematch/internal/auth"
	"github.com/moviematch/moviematch/internal/models"
)

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RefreshRequest is the body of POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login authenticates with email and password and issues a token pair.
//
// Method: POST
// Path: /api/v1/auth/login
//
// Response:
//   - 200: {access_token, refresh_token, token_type, expires_in}
//   - 400: malformed body or invalid email/password shape
//   - 401: credentials rejected
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   pair,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Refresh exchanges a valid refresh token for a fresh token pair.
//
// Method: POST
// Path: /api/v1/auth/refresh
//
// Response:
//   - 200: fresh token pair
//   - 400: malformed body
//   - 401: token invalid, expired, or not a refresh token
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid refresh token", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   pair,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
