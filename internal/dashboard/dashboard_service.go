package dashboard

import (
	"context"
	"fmt"
	"sort"

	"microblog/internal/dbmysql"
)

const rankingSize = 5

// StatsSource is the slice of the aggregation layer the dashboard ranks
// over. The count maps use the zero default for absent keys.
type StatsSource interface {
	TotalCounts(ctx context.Context) (users, tweets, likes int64, err error)
	AllUsers(ctx context.Context) ([]dbmysql.User, error)
	AllTweets(ctx context.Context) ([]dbmysql.Tweet, error)
	FollowerCountsByUser(ctx context.Context) (map[int64]int64, error)
	TweetCountsByUser(ctx context.Context) (map[int64]int64, error)
	GlobalLikeCountsByTweet(ctx context.Context) (map[int64]int64, error)
}

type AuthorRank struct {
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	FollowersCount int64  `json:"followers_count"`
	TweetCount     int64  `json:"tweet_count"`
}

type TrendingTweet struct {
	TweetID    int64  `json:"tweet_id"`
	Content    string `json:"content"`
	Author     string `json:"author"`
	LikesCount int64  `json:"likes_count"`
}

type Stats struct {
	TotalUsers     int64           `json:"total_users"`
	TotalTweets    int64           `json:"total_tweets"`
	TotalLikes     int64           `json:"total_likes"`
	PopularAuthors []AuthorRank    `json:"popular_authors"`
	TrendingTweets []TrendingTweet `json:"trending_tweets"`
}

// Service computes viewer-independent, global rankings.
type Service struct {
	source StatsSource
}

func NewService(source StatsSource) *Service {
	return &Service{source: source}
}

// Overview returns total counts, the top-5 authors by followers and the
// top-5 tweets by likes.
func (s *Service) Overview(ctx context.Context) (*Stats, error) {
	totalUsers, totalTweets, totalLikes, err := s.source.TotalCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load totals: %w", err)
	}

	popularAuthors, users, err := s.popularAuthors(ctx)
	if err != nil {
		return nil, err
	}

	trendingTweets, err := s.trendingTweets(ctx, users)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:     totalUsers,
		TotalTweets:    totalTweets,
		TotalLikes:     totalLikes,
		PopularAuthors: popularAuthors,
		TrendingTweets: trendingTweets,
	}, nil
}

// popularAuthors ranks by followers desc, tweet count desc, then name asc
// so the ranking is deterministic when both counts tie.
func (s *Service) popularAuthors(ctx context.Context) ([]AuthorRank, map[int64]dbmysql.User, error) {
	users, err := s.source.AllUsers(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load users: %w", err)
	}
	followerCounts, err := s.source.FollowerCountsByUser(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load follower counts: %w", err)
	}
	tweetCounts, err := s.source.TweetCountsByUser(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load tweet counts: %w", err)
	}

	ranks := make([]AuthorRank, 0, len(users))
	byID := make(map[int64]dbmysql.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
		ranks = append(ranks, AuthorRank{
			UserID:         u.ID,
			Name:           u.Name,
			FollowersCount: followerCounts[u.ID],
			TweetCount:     tweetCounts[u.ID],
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		a, b := ranks[i], ranks[j]
		if a.FollowersCount != b.FollowersCount {
			return a.FollowersCount > b.FollowersCount
		}
		if a.TweetCount != b.TweetCount {
			return a.TweetCount > b.TweetCount
		}
		return a.Name < b.Name
	})

	if len(ranks) > rankingSize {
		ranks = ranks[:rankingSize]
	}
	return ranks, byID, nil
}

// trendingTweets ranks by likes desc, created_at desc, id desc.
func (s *Service) trendingTweets(ctx context.Context, users map[int64]dbmysql.User) ([]TrendingTweet, error) {
	tweets, err := s.source.AllTweets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tweets: %w", err)
	}
	likeCounts, err := s.source.GlobalLikeCountsByTweet(ctx)
	if err != nil {
		return nil, fmt.Errorf("load like counts: %w", err)
	}

	sort.SliceStable(tweets, func(i, j int) bool {
		a, b := tweets[i], tweets[j]
		if likeCounts[a.ID] != likeCounts[b.ID] {
			return likeCounts[a.ID] > likeCounts[b.ID]
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if len(tweets) > rankingSize {
		tweets = tweets[:rankingSize]
	}

	trending := make([]TrendingTweet, 0, len(tweets))
	for _, t := range tweets {
		trending = append(trending, TrendingTweet{
			TweetID:    t.ID,
			Content:    t.Content,
			Author:     users[t.AuthorID].Name,
			LikesCount: likeCounts[t.ID],
		})
	}
	return trending, nil
}
