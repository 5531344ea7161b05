package user

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microblog/internal/common"
)

type Usecase interface {
	Profile(ctx context.Context, userID int64) (*Profile, error)
	List(ctx context.Context, viewerID int64) ([]ListedUser, error)
	Follow(ctx context.Context, followerID, followeeID int64) error
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	Followers(ctx context.Context, userID int64) ([]Brief, error)
	Following(ctx context.Context, userID int64) ([]Brief, error)
}

type Handler struct {
	Svc    Usecase
	Logger *logrus.Logger
}

func NewHandler(svc Usecase, logger *logrus.Logger) *Handler {
	return &Handler{Svc: svc, Logger: logger}
}

type profileResponse struct {
	Result bool     `json:"result"`
	User   *Profile `json:"user"`
}

type listResponse struct {
	Result bool         `json:"result"`
	Users  []ListedUser `json:"users"`
}

type followersResponse struct {
	Result    bool    `json:"result"`
	Followers []Brief `json:"followers"`
}

type followingResponse struct {
	Result    bool    `json:"result"`
	Following []Brief `json:"following"`
}

type resultResponse struct {
	Result bool `json:"result"`
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	profile, err := h.Svc.Profile(r.Context(), viewer.ID)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, profileResponse{Result: true, User: profile})
}

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	users, err := h.Svc.List(r.Context(), viewer.ID)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, listResponse{Result: true, Users: users})
}

// Profile handles GET /api/users/{userID}.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDVar(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	profile, err := h.Svc.Profile(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, profileResponse{Result: true, User: profile})
}

// Followers handles GET /api/users/{userID}/followers.
func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDVar(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	followers, err := h.Svc.Followers(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, followersResponse{Result: true, Followers: followers})
}

// Following handles GET /api/users/{userID}/following.
func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDVar(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	following, err := h.Svc.Following(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, followingResponse{Result: true, Following: following})
}

// Follow handles POST /api/users/{userID}/follow.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	h.toggleFollow(w, r, true)
}

// Unfollow handles DELETE /api/users/{userID}/follow.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.toggleFollow(w, r, false)
}

func (h *Handler) toggleFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	userID, err := userIDVar(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	if follow {
		err = h.Svc.Follow(r.Context(), viewer.ID, userID)
	} else {
		err = h.Svc.Unfollow(r.Context(), viewer.ID, userID)
	}
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, resultResponse{Result: true})
}

func userIDVar(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["userID"]
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, common.Validationf("invalid user id: %q", raw)
	}
	return userID, nil
}
