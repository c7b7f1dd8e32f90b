package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

type sizeParams struct {
	Width  int `validate:"min=2,max=256"`
	Height int `validate:"min=2,max=256"`
}

type userParams struct {
	sizeParams
	User string `validate:"required,max=64"`
}

type requirementParams struct {
	sizeParams
	Tier string `validate:"required,max=32"`
}

// parseSize accepts "WxH" or "N" (square).
func parseSize(s string) (sizeParams, error) {
	w, hgt, found := strings.Cut(strings.ToLower(s), "x")
	if !found {
		hgt = w
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return sizeParams{}, fmt.Errorf("invalid size %q", s)
	}
	height, err := strconv.Atoi(hgt)
	if err != nil {
		return sizeParams{}, fmt.Errorf("invalid size %q", s)
	}
	return sizeParams{Width: width, Height: height}, nil
}

func (h *Handler) userRequest(r *http.Request) (userParams, error) {
	size, err := parseSize(chi.URLParam(r, "size"))
	if err != nil {
		return userParams{}, err
	}
	p := userParams{sizeParams: size, User: chi.URLParam(r, "user")}
	if err := h.validator.Struct(p); err != nil {
		return userParams{}, err
	}
	return p, nil
}

// GetStandings returns the ranked table of the latest snapshot
// @Summary Tier standings
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} models.Standings
// @Failure 404 {object} map[string]string "No snapshot stored"
// @Router /api/v1/standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.leaderboard.Standings(r.Context())
	if err != nil {
		h.serviceError(w, err, "Failed to load standings")
		return
	}
	h.jsonResponse(w, http.StatusOK, standings)
}

// GetSnapshots lists the dates of the stored snapshots
// @Summary Snapshot dates
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} models.SnapshotList
// @Router /api/v1/snapshots [get]
func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	list, err := h.leaderboard.Snapshots(r.Context())
	if err != nil {
		h.serviceError(w, err, "Failed to list snapshots")
		return
	}
	h.jsonResponse(w, http.StatusOK, list)
}

// GetRank returns a user's position, power and power tier
// @Summary User rank
// @Tags Leaderboard
// @Produce json
// @Param user path string true "User name or alias"
// @Success 200 {object} models.UserStanding
// @Failure 404 {object} map[string]string "Unknown user"
// @Router /api/v1/rank/{user} [get]
func (h *Handler) GetRank(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	if err := h.validator.Var(user, "required,max=64"); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid user")
		return
	}

	standing, err := h.leaderboard.Rank(r.Context(), user)
	if err != nil {
		h.serviceError(w, err, "Failed to rank user", "user", user)
		return
	}
	h.jsonResponse(w, http.StatusOK, standing)
}

// GetPersonalBests returns a user's best times on one puzzle size
// @Summary Time personal bests
// @Tags Leaderboard
// @Produce json
// @Param size path string true "Puzzle size, e.g. 4x4"
// @Param user path string true "User name or alias"
// @Success 200 {object} models.PBReport
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "No results"
// @Router /api/v1/pb/{size}/{user} [get]
func (h *Handler) GetPersonalBests(w http.ResponseWriter, r *http.Request) {
	p, err := h.userRequest(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.leaderboard.PersonalBests(r.Context(), p.Width, p.Height, p.User)
	if err != nil {
		h.serviceError(w, err, "Failed to load personal bests", "user", p.User, "width", p.Width, "height", p.Height)
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}

// GetMovePersonalBests returns a user's fewest-move results on one size
// @Summary Move personal bests
// @Tags Leaderboard
// @Produce json
// @Param size path string true "Puzzle size, e.g. 4x4"
// @Param user path string true "User name or alias"
// @Success 200 {object} models.MovePBReport
// @Failure 400 {object} map[string]string
// @Router /api/v1/movepb/{size}/{user} [get]
func (h *Handler) GetMovePersonalBests(w http.ResponseWriter, r *http.Request) {
	p, err := h.userRequest(r)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.leaderboard.MovePersonalBests(r.Context(), p.Width, p.Height, p.User)
	if err != nil {
		h.serviceError(w, err, "Failed to load move personal bests", "user", p.User, "width", p.Width, "height", p.Height)
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}

// GetRequirements returns a tier's thresholds for one size
// @Summary Tier requirements
// @Tags Tiers
// @Produce json
// @Param size path string true "Puzzle size, e.g. 4x4"
// @Param tier path string true "Tier name (case-insensitive)"
// @Success 200 {object} models.RequirementReport
// @Failure 404 {object} map[string]string "Unknown tier or unranked size"
// @Router /api/v1/req/{size}/{tier} [get]
func (h *Handler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	size, err := parseSize(chi.URLParam(r, "size"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	p := requirementParams{sizeParams: size, Tier: chi.URLParam(r, "tier")}
	if err := h.validator.Struct(p); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.leaderboard.Requirements(p.Width, p.Height, p.Tier)
	if err != nil {
		h.serviceError(w, err, "Failed to load requirements", "tier", p.Tier)
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}

// GetTiers lists the tier schedule
// @Summary Tier schedule
// @Tags Tiers
// @Produce json
// @Success 200 {array} models.Tier
// @Router /api/v1/tiers [get]
func (h *Handler) GetTiers(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, http.StatusOK, h.leaderboard.Tiers())
}

// PostUpdate refreshes the stored results table from the feed
// @Summary Refresh leaderboard
// @Tags Admin
// @Produce json
// @Security AdminToken
// @Success 200 {object} models.UpdateSummary
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/v1/update [post]
func (h *Handler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	summary, err := h.leaderboard.Update(r.Context())
	if err != nil {
		h.serviceError(w, err, "Leaderboard update failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, summary)
}
