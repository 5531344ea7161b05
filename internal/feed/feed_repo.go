package feed

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microblog/internal/dbmysql"
)

// FeedRepository implements every storage concern of the feed: the social
// graph read, the grouped-count aggregation queries and the tweet/like
// mutations. One struct, small per-concern interfaces.
type FeedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// --------- SOCIAL GRAPH ---------

type SocialGraph interface {
	FolloweeIDs(ctx context.Context, viewerID int64) ([]int64, error)
}

// FolloweeIDs returns the audience of a viewer's feed: every followee plus
// the viewer itself. A user's feed always includes their own tweets.
func (r *FeedRepository) FolloweeIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return append(ids, viewerID), nil
}

// --------- TWEETS ---------

type Tweets interface {
	ListByAuthors(ctx context.Context, authorIDs []int64) ([]dbmysql.Tweet, error)
	TweetByID(ctx context.Context, id int64) (*dbmysql.Tweet, error)
	CreateTweet(ctx context.Context, tweet *dbmysql.Tweet, mediaIDs []int64) error
	DeleteTweet(ctx context.Context, id int64) error
}

func (r *FeedRepository) ListByAuthors(ctx context.Context, authorIDs []int64) ([]dbmysql.Tweet, error) {
	var tweets []dbmysql.Tweet
	if len(authorIDs) == 0 {
		return tweets, nil
	}
	err := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Find(&tweets).Error
	return tweets, err
}

func (r *FeedRepository) TweetByID(ctx context.Context, id int64) (*dbmysql.Tweet, error) {
	var tweet dbmysql.Tweet
	err := r.db.WithContext(ctx).First(&tweet, "id = ?", id).Error
	return &tweet, err
}

// CreateTweet inserts the tweet and its attachment rows as one unit, so a
// reader never observes a tweet with a partial attachment set.
func (r *FeedRepository) CreateTweet(ctx context.Context, tweet *dbmysql.Tweet, mediaIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tweet).Error; err != nil {
			return err
		}
		for _, mediaID := range mediaIDs {
			if err := tx.Create(&dbmysql.TweetMedia{TweetID: tweet.ID, MediaID: mediaID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteTweet removes the tweet with its attachments and likes in one
// transaction.
func (r *FeedRepository) DeleteTweet(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", id).Delete(&dbmysql.TweetMedia{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tweet_id = ?", id).Delete(&dbmysql.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dbmysql.Tweet{}, "id = ?", id).Error
	})
}

// --------- LIKES ---------

type Likes interface {
	AddLike(ctx context.Context, userID, tweetID int64) error
	RemoveLike(ctx context.Context, userID, tweetID int64) error
}

// AddLike is idempotent: a duplicate insert hits the (user, tweet) unique
// constraint and is treated as "already exists".
func (r *FeedRepository) AddLike(ctx context.Context, userID, tweetID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dbmysql.Like{UserID: userID, TweetID: tweetID}).Error
}

func (r *FeedRepository) RemoveLike(ctx context.Context, userID, tweetID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		Delete(&dbmysql.Like{}).Error
}

// --------- MEDIA OWNERSHIP ---------

type Medias interface {
	MediasByID(ctx context.Context, ids []int64) ([]dbmysql.Media, error)
}

func (r *FeedRepository) MediasByID(ctx context.Context, ids []int64) ([]dbmysql.Media, error) {
	var medias []dbmysql.Media
	if len(ids) == 0 {
		return medias, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&medias).Error
	return medias, err
}

// --------- AGGREGATION ---------

// Aggregates is the grouped-count layer. Entities with no matching rows are
// absent from the returned maps; callers must read them with the zero
// default, never as missing.
type Aggregates interface {
	LikeCountsByTweet(ctx context.Context, tweetIDs []int64) (map[int64]int64, error)
	LikersByTweet(ctx context.Context, tweetIDs []int64) (map[int64][]Liker, error)
	AttachmentsByTweet(ctx context.Context, tweetIDs []int64) (map[int64][]string, error)
	UsersByID(ctx context.Context, ids []int64) (map[int64]dbmysql.User, error)
}

type tweetCountRow struct {
	TweetID int64
	Total   int64
}

func (r *FeedRepository) LikeCountsByTweet(ctx context.Context, tweetIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return counts, nil
	}
	var rows []tweetCountRow
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Like{}).
		Select("tweet_id AS tweet_id, COUNT(*) AS total").
		Where("tweet_id IN ?", tweetIDs).
		Group("tweet_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.TweetID] = row.Total
	}
	return counts, nil
}

type likerRow struct {
	TweetID int64
	UserID  int64
	Name    string
}

// LikersByTweet batch-fetches the likers of each tweet with their names, in
// like insertion order. The feed derives likes_count from this same set.
func (r *FeedRepository) LikersByTweet(ctx context.Context, tweetIDs []int64) (map[int64][]Liker, error) {
	likers := make(map[int64][]Liker, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return likers, nil
	}
	var rows []likerRow
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Like{}).
		Select("likes.tweet_id AS tweet_id, users.id AS user_id, users.name AS name").
		Joins("JOIN users ON users.id = likes.user_id").
		Where("likes.tweet_id IN ?", tweetIDs).
		Order("likes.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		likers[row.TweetID] = append(likers[row.TweetID], Liker{UserID: row.UserID, Name: row.Name})
	}
	return likers, nil
}

type attachmentRow struct {
	TweetID int64
	Path    string
}

// AttachmentsByTweet returns storage paths per tweet in attachment
// insertion order.
func (r *FeedRepository) AttachmentsByTweet(ctx context.Context, tweetIDs []int64) (map[int64][]string, error) {
	attachments := make(map[int64][]string, len(tweetIDs))
	if len(tweetIDs) == 0 {
		return attachments, nil
	}
	var rows []attachmentRow
	err := r.db.WithContext(ctx).
		Model(&dbmysql.TweetMedia{}).
		Select("tweet_medias.tweet_id AS tweet_id, medias.path AS path").
		Joins("JOIN medias ON medias.id = tweet_medias.media_id").
		Where("tweet_medias.tweet_id IN ?", tweetIDs).
		Order("tweet_medias.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		attachments[row.TweetID] = append(attachments[row.TweetID], row.Path)
	}
	return attachments, nil
}

func (r *FeedRepository) UsersByID(ctx context.Context, ids []int64) (map[int64]dbmysql.User, error) {
	users := make(map[int64]dbmysql.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	var rows []dbmysql.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}

// --------- GLOBAL AGGREGATION (dashboard) ---------

type userCountRow struct {
	UserID int64
	Total  int64
}

// FollowerCountsByUser groups follow edges by followee.
func (r *FeedRepository) FollowerCountsByUser(ctx context.Context) (map[int64]int64, error) {
	var rows []userCountRow
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Select("followee_id AS user_id, COUNT(*) AS total").
		Group("followee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// TweetCountsByUser groups tweets by author.
func (r *FeedRepository) TweetCountsByUser(ctx context.Context) (map[int64]int64, error) {
	var rows []userCountRow
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Tweet{}).
		Select("author_id AS user_id, COUNT(*) AS total").
		Group("author_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// GlobalLikeCountsByTweet groups every like by tweet, viewer-independent.
func (r *FeedRepository) GlobalLikeCountsByTweet(ctx context.Context) (map[int64]int64, error) {
	var rows []tweetCountRow
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Like{}).
		Select("tweet_id AS tweet_id, COUNT(*) AS total").
		Group("tweet_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[int64]int64, len(rows))
	for _, row := range rows {
		counts[row.TweetID] = row.Total
	}
	return counts, nil
}

func (r *FeedRepository) AllUsers(ctx context.Context) ([]dbmysql.User, error) {
	var users []dbmysql.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *FeedRepository) AllTweets(ctx context.Context) ([]dbmysql.Tweet, error) {
	var tweets []dbmysql.Tweet
	err := r.db.WithContext(ctx).Order("id").Find(&tweets).Error
	return tweets, err
}

// TotalCounts returns the table-wide totals for the dashboard.
func (r *FeedRepository) TotalCounts(ctx context.Context) (users, tweets, likes int64, err error) {
	if err = r.db.WithContext(ctx).Model(&dbmysql.User{}).Count(&users).Error; err != nil {
		return
	}
	if err = r.db.WithContext(ctx).Model(&dbmysql.Tweet{}).Count(&tweets).Error; err != nil {
		return
	}
	err = r.db.WithContext(ctx).Model(&dbmysql.Like{}).Count(&likes).Error
	return
}
