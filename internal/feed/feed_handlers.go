package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microblog/internal/common"
)

type FeedUsecase interface {
	GetFeed(ctx context.Context, viewerID int64, sortMode Sort, page, limit int) ([]TweetView, Pagination, error)
	CreateTweet(ctx context.Context, authorID int64, content string, mediaIDs []int64) (int64, error)
	DeleteTweet(ctx context.Context, viewerID, tweetID int64) error
	LikeTweet(ctx context.Context, userID, tweetID int64) error
	UnlikeTweet(ctx context.Context, userID, tweetID int64) error
}

type FeedHandlers struct {
	FeedSvc FeedUsecase
	Logger  *logrus.Logger
}

func NewFeedHandlers(svc FeedUsecase, logger *logrus.Logger) *FeedHandlers {
	return &FeedHandlers{FeedSvc: svc, Logger: logger}
}

type feedResponse struct {
	Result     bool        `json:"result"`
	Tweets     []TweetView `json:"tweets"`
	Pagination Pagination  `json:"pagination"`
}

type createTweetRequest struct {
	TweetData     string  `json:"tweet_data"`
	TweetMediaIDs []int64 `json:"tweet_media_ids"`
}

type createTweetResponse struct {
	Result  bool  `json:"result"`
	TweetID int64 `json:"tweet_id"`
}

type resultResponse struct {
	Result bool `json:"result"`
}

// GetFeed handles GET /api/tweets.
func (h *FeedHandlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	sortMode, page, limit, err := parseFeedParams(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	tweets, pagination, err := h.FeedSvc.GetFeed(r.Context(), viewer.ID, sortMode, page, limit)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}
	if tweets == nil {
		tweets = []TweetView{}
	}

	common.WriteJSON(w, http.StatusOK, feedResponse{Result: true, Tweets: tweets, Pagination: pagination})
}

// parseFeedParams validates sort, page and limit. "page" is canonical;
// "offset" is kept as a deprecated alias carrying the same 1-based page
// number and is only read when "page" is absent.
func parseFeedParams(r *http.Request) (Sort, int, int, error) {
	query := r.URL.Query()

	sortMode, err := ParseSort(query.Get("sort"))
	if err != nil {
		return "", 0, 0, err
	}

	pageParam := query.Get("page")
	if pageParam == "" {
		pageParam = query.Get("offset")
	}
	page := 1
	if pageParam != "" {
		page, err = strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return "", 0, 0, common.Validationf("invalid page parameter: %q", pageParam)
		}
	}

	limit := DefaultLimit
	if limitParam := query.Get("limit"); limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit < 1 {
			return "", 0, 0, common.Validationf("invalid limit parameter: %q", limitParam)
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
	}

	return sortMode, page, limit, nil
}

// CreateTweet handles POST /api/tweets.
func (h *FeedHandlers) CreateTweet(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	var req createTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, h.Logger, common.Validationf("invalid request body"))
		return
	}

	tweetID, err := h.FeedSvc.CreateTweet(r.Context(), viewer.ID, req.TweetData, req.TweetMediaIDs)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, createTweetResponse{Result: true, TweetID: tweetID})
}

// DeleteTweet handles DELETE /api/tweets/{tweetID}.
func (h *FeedHandlers) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	tweetID, err := tweetIDVar(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	if err := h.FeedSvc.DeleteTweet(r.Context(), viewer.ID, tweetID); err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, resultResponse{Result: true})
}

// LikeTweet handles POST /api/tweets/{tweetID}/likes.
func (h *FeedHandlers) LikeTweet(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, true)
}

// UnlikeTweet handles DELETE /api/tweets/{tweetID}/likes.
func (h *FeedHandlers) UnlikeTweet(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, false)
}

func (h *FeedHandlers) toggleLike(w http.ResponseWriter, r *http.Request, like bool) {
	viewer, ok := common.CurrentUser(r.Context())
	if !ok {
		common.WriteError(w, h.Logger, common.Unauthorizedf("authentication required"))
		return
	}

	tweetID, err := tweetIDVar(r)
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	if like {
		err = h.FeedSvc.LikeTweet(r.Context(), viewer.ID, tweetID)
	} else {
		err = h.FeedSvc.UnlikeTweet(r.Context(), viewer.ID, tweetID)
	}
	if err != nil {
		common.WriteError(w, h.Logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, resultResponse{Result: true})
}

func tweetIDVar(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["tweetID"]
	tweetID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || tweetID <= 0 {
		return 0, common.Validationf("invalid tweet id: %q", raw)
	}
	return tweetID, nil
}
