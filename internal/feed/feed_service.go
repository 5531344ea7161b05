package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"microblog/internal/common"
	"microblog/internal/dbmysql"
)

// Sort selects the feed ordering policy.
type Sort string

const (
	SortPopular Sort = "popular"
	SortLatest  Sort = "latest"

	DefaultLimit = 20
	MaxLimit     = 50

	maxContentLength = 1000
)

// ParseSort validates a sort query value, defaulting to popular.
func ParseSort(value string) (Sort, error) {
	switch value {
	case "", string(SortPopular):
		return SortPopular, nil
	case string(SortLatest):
		return SortLatest, nil
	default:
		return "", common.Validationf("invalid sort parameter: %q", value)
	}
}

type UserBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Liker struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// TweetView is one assembled feed entry. LikesCount is always derived from
// the same like set serialized in Likes, so the two can never disagree.
type TweetView struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
	Author      UserBrief `json:"author"`
	Likes       []Liker   `json:"likes"`
	LikesCount  int       `json:"likes_count"`
	LikedByMe   bool      `json:"liked_by_me"`
	Stamp       time.Time `json:"stamp"`
}

type Pagination struct {
	Page         int  `json:"page"`
	Limit        int  `json:"limit"`
	Sort         Sort `json:"sort"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page,omitempty"`
	PreviousPage *int `json:"previous_page,omitempty"`
}

// FeedService combines audience scoping, count aggregation, sort policy and
// pagination into an ordered, bounded page of tweets.
type FeedService struct {
	graph  SocialGraph
	tweets Tweets
	likes  Likes
	medias Medias
	agg    Aggregates
}

func NewFeedService(g SocialGraph, t Tweets, l Likes, m Medias, a Aggregates) *FeedService {
	return &FeedService{graph: g, tweets: t, likes: l, medias: m, agg: a}
}

// GetFeed returns one page of the viewer's feed plus pagination metadata.
// Callers validate sort, page and limit before this point.
func (s *FeedService) GetFeed(ctx context.Context, viewerID int64, sortMode Sort, page, limit int) ([]TweetView, Pagination, error) {
	audience, err := s.graph.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("load audience: %w", err)
	}

	candidates, err := s.tweets.ListByAuthors(ctx, audience)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("load candidate tweets: %w", err)
	}

	candidateIDs := make([]int64, len(candidates))
	for i, t := range candidates {
		candidateIDs[i] = t.ID
	}
	counts, err := s.agg.LikeCountsByTweet(ctx, candidateIDs)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("load like counts: %w", err)
	}

	orderTweets(candidates, counts, sortMode)

	pageTweets, hasNext := paginate(candidates, page, limit)

	views, err := s.assemble(ctx, viewerID, pageTweets)
	if err != nil {
		return nil, Pagination{}, err
	}

	pagination := Pagination{
		Page:        page,
		Limit:       limit,
		Sort:        sortMode,
		HasNext:     hasNext,
		HasPrevious: page > 1,
	}
	if hasNext {
		next := page + 1
		pagination.NextPage = &next
	}
	if page > 1 {
		previous := page - 1
		pagination.PreviousPage = &previous
	}

	return views, pagination, nil
}

// orderTweets applies the sort policy. The final id tie-break guarantees a
// total order, so pagination stays stable when counts and timestamps
// collide.
func orderTweets(tweets []dbmysql.Tweet, counts map[int64]int64, mode Sort) {
	less := func(a, b dbmysql.Tweet) bool {
		if counts[a.ID] != counts[b.ID] {
			return counts[a.ID] > counts[b.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}
	if mode == SortLatest {
		less = func(a, b dbmysql.Tweet) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			if a.ID != b.ID {
				return a.ID > b.ID
			}
			return counts[a.ID] > counts[b.ID]
		}
	}
	sort.SliceStable(tweets, func(i, j int) bool {
		return less(tweets[i], tweets[j])
	})
}

// paginate skips (page-1)*limit entries and keeps limit+1 as lookahead: the
// extra entry only signals a next page and is never returned.
func paginate(tweets []dbmysql.Tweet, page, limit int) ([]dbmysql.Tweet, bool) {
	// any page past the data is empty; checked by division so the skip
	// multiplication below cannot overflow for huge page values
	if page > len(tweets)/limit+1 {
		return nil, false
	}
	start := (page - 1) * limit
	if start >= len(tweets) {
		return nil, false
	}
	end := start + limit + 1
	if end > len(tweets) {
		end = len(tweets)
	}
	window := tweets[start:end]
	if len(window) > limit {
		return window[:limit], true
	}
	return window, false
}

// assemble batch-fetches likers, attachments and authors for the page, a
// bounded number of storage round-trips regardless of page content.
func (s *FeedService) assemble(ctx context.Context, viewerID int64, tweets []dbmysql.Tweet) ([]TweetView, error) {
	ids := make([]int64, len(tweets))
	authorIDs := make([]int64, 0, len(tweets))
	seenAuthors := make(map[int64]bool, len(tweets))
	for i, t := range tweets {
		ids[i] = t.ID
		if !seenAuthors[t.AuthorID] {
			seenAuthors[t.AuthorID] = true
			authorIDs = append(authorIDs, t.AuthorID)
		}
	}

	likers, err := s.agg.LikersByTweet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load likers: %w", err)
	}
	attachments, err := s.agg.AttachmentsByTweet(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load attachments: %w", err)
	}
	authors, err := s.agg.UsersByID(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	views := make([]TweetView, 0, len(tweets))
	for _, t := range tweets {
		tweetLikers := likers[t.ID]
		if tweetLikers == nil {
			tweetLikers = []Liker{}
		}
		paths := attachments[t.ID]
		if paths == nil {
			paths = []string{}
		}
		likedByMe := false
		for _, liker := range tweetLikers {
			if liker.UserID == viewerID {
				likedByMe = true
				break
			}
		}
		author := authors[t.AuthorID]
		views = append(views, TweetView{
			ID:          t.ID,
			Content:     t.Content,
			Attachments: paths,
			Author:      UserBrief{ID: author.ID, Name: author.Name},
			Likes:       tweetLikers,
			LikesCount:  len(tweetLikers),
			LikedByMe:   likedByMe,
			Stamp:       t.CreatedAt,
		})
	}
	return views, nil
}

// CreateTweet validates content and attachment ownership, then persists the
// tweet and its attachments as one unit.
func (s *FeedService) CreateTweet(ctx context.Context, authorID int64, content string, mediaIDs []int64) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > maxContentLength {
		return 0, common.Validationf("invalid tweet_data")
	}

	if len(mediaIDs) > 0 {
		medias, err := s.medias.MediasByID(ctx, mediaIDs)
		if err != nil {
			return 0, fmt.Errorf("load media: %w", err)
		}
		byID := make(map[int64]dbmysql.Media, len(medias))
		for _, m := range medias {
			byID[m.ID] = m
		}
		// All-or-nothing: a single missing or foreign media rejects the
		// whole create.
		for _, id := range mediaIDs {
			m, ok := byID[id]
			if !ok {
				return 0, common.NotFoundf("media %d not found", id)
			}
			if m.UploaderID != authorID {
				return 0, common.Forbiddenf("media %d is not owned by the tweet author", id)
			}
		}
	}

	tweet := &dbmysql.Tweet{Content: content, AuthorID: authorID}
	if err := s.tweets.CreateTweet(ctx, tweet, mediaIDs); err != nil {
		return 0, fmt.Errorf("create tweet: %w", err)
	}
	return tweet.ID, nil
}

// DeleteTweet removes a tweet; only the author may delete it.
func (s *FeedService) DeleteTweet(ctx context.Context, viewerID, tweetID int64) error {
	tweet, err := s.tweets.TweetByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFoundf("tweet not found")
		}
		return fmt.Errorf("load tweet: %w", err)
	}
	if tweet.AuthorID != viewerID {
		return common.Forbiddenf("forbidden")
	}
	if err := s.tweets.DeleteTweet(ctx, tweetID); err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}
	return nil
}

// LikeTweet is idempotent; liking an already-liked tweet is a no-op success.
func (s *FeedService) LikeTweet(ctx context.Context, userID, tweetID int64) error {
	if err := s.ensureTweetExists(ctx, tweetID); err != nil {
		return err
	}
	if err := s.likes.AddLike(ctx, userID, tweetID); err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

// UnlikeTweet is idempotent; unliking a tweet never liked is a no-op
// success.
func (s *FeedService) UnlikeTweet(ctx context.Context, userID, tweetID int64) error {
	if err := s.ensureTweetExists(ctx, tweetID); err != nil {
		return err
	}
	if err := s.likes.RemoveLike(ctx, userID, tweetID); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

func (s *FeedService) ensureTweetExists(ctx context.Context, tweetID int64) error {
	if _, err := s.tweets.TweetByID(ctx, tweetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFoundf("tweet not found")
		}
		return fmt.Errorf("load tweet: %w", err)
	}
	return nil
}
