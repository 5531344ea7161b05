package feed

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"microblog/internal/common"
	"microblog/internal/dbmysql"
)

// ---- In-memory fake for every repository concern ----

type fakeStore struct {
	users       map[int64]dbmysql.User
	follows     map[int64][]int64 // follower -> followees
	tweets      []dbmysql.Tweet
	likes       []dbmysql.Like
	medias      map[int64]dbmysql.Media
	attachments map[int64][]int64 // tweet -> media ids, insertion order

	nextTweetID int64
	nextLikeID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[int64]dbmysql.User{},
		follows:     map[int64][]int64{},
		medias:      map[int64]dbmysql.Media{},
		attachments: map[int64][]int64{},
		nextTweetID: 1,
		nextLikeID:  1,
	}
}

func (f *fakeStore) addUser(id int64, name string) {
	f.users[id] = dbmysql.User{ID: id, Name: name}
}

func (f *fakeStore) addTweet(authorID int64, content string, createdAt time.Time) int64 {
	id := f.nextTweetID
	f.nextTweetID++
	f.tweets = append(f.tweets, dbmysql.Tweet{ID: id, Content: content, AuthorID: authorID, CreatedAt: createdAt})
	return id
}

func (f *fakeStore) FolloweeIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	return append(append([]int64{}, f.follows[viewerID]...), viewerID), nil
}

func (f *fakeStore) ListByAuthors(ctx context.Context, authorIDs []int64) ([]dbmysql.Tweet, error) {
	audience := map[int64]bool{}
	for _, id := range authorIDs {
		audience[id] = true
	}
	var out []dbmysql.Tweet
	for _, t := range f.tweets {
		if audience[t.AuthorID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) TweetByID(ctx context.Context, id int64) (*dbmysql.Tweet, error) {
	for _, t := range f.tweets {
		if t.ID == id {
			tt := t
			return &tt, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) CreateTweet(ctx context.Context, tweet *dbmysql.Tweet, mediaIDs []int64) error {
	tweet.ID = f.nextTweetID
	f.nextTweetID++
	if tweet.CreatedAt.IsZero() {
		tweet.CreatedAt = time.Now()
	}
	f.tweets = append(f.tweets, *tweet)
	f.attachments[tweet.ID] = append([]int64{}, mediaIDs...)
	return nil
}

func (f *fakeStore) DeleteTweet(ctx context.Context, id int64) error {
	var kept []dbmysql.Tweet
	for _, t := range f.tweets {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tweets = kept
	delete(f.attachments, id)
	var keptLikes []dbmysql.Like
	for _, l := range f.likes {
		if l.TweetID != id {
			keptLikes = append(keptLikes, l)
		}
	}
	f.likes = keptLikes
	return nil
}

func (f *fakeStore) AddLike(ctx context.Context, userID, tweetID int64) error {
	// unique (user, tweet): duplicate insert is a no-op
	for _, l := range f.likes {
		if l.UserID == userID && l.TweetID == tweetID {
			return nil
		}
	}
	f.likes = append(f.likes, dbmysql.Like{ID: f.nextLikeID, UserID: userID, TweetID: tweetID})
	f.nextLikeID++
	return nil
}

func (f *fakeStore) RemoveLike(ctx context.Context, userID, tweetID int64) error {
	var kept []dbmysql.Like
	for _, l := range f.likes {
		if !(l.UserID == userID && l.TweetID == tweetID) {
			kept = append(kept, l)
		}
	}
	f.likes = kept
	return nil
}

func (f *fakeStore) MediasByID(ctx context.Context, ids []int64) ([]dbmysql.Media, error) {
	var out []dbmysql.Media
	for _, id := range ids {
		if m, ok := f.medias[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) LikeCountsByTweet(ctx context.Context, tweetIDs []int64) (map[int64]int64, error) {
	wanted := map[int64]bool{}
	for _, id := range tweetIDs {
		wanted[id] = true
	}
	counts := map[int64]int64{}
	for _, l := range f.likes {
		if wanted[l.TweetID] {
			counts[l.TweetID]++
		}
	}
	return counts, nil
}

func (f *fakeStore) LikersByTweet(ctx context.Context, tweetIDs []int64) (map[int64][]Liker, error) {
	wanted := map[int64]bool{}
	for _, id := range tweetIDs {
		wanted[id] = true
	}
	likers := map[int64][]Liker{}
	for _, l := range f.likes {
		if wanted[l.TweetID] {
			likers[l.TweetID] = append(likers[l.TweetID], Liker{UserID: l.UserID, Name: f.users[l.UserID].Name})
		}
	}
	return likers, nil
}

func (f *fakeStore) AttachmentsByTweet(ctx context.Context, tweetIDs []int64) (map[int64][]string, error) {
	out := map[int64][]string{}
	for _, id := range tweetIDs {
		for _, mediaID := range f.attachments[id] {
			out[id] = append(out[id], f.medias[mediaID].Path)
		}
	}
	return out, nil
}

func (f *fakeStore) UsersByID(ctx context.Context, ids []int64) (map[int64]dbmysql.User, error) {
	out := map[int64]dbmysql.User{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// Guard: the fake satisfies every repository interface at compile time
var (
	_ SocialGraph = (*fakeStore)(nil)
	_ Tweets      = (*fakeStore)(nil)
	_ Likes       = (*fakeStore)(nil)
	_ Medias      = (*fakeStore)(nil)
	_ Aggregates  = (*fakeStore)(nil)
)

func newTestService(store *fakeStore) *FeedService {
	return NewFeedService(store, store, store, store, store)
}

// ---- Tests ----

// Users A (0 tweets), B (1 tweet, liked by A and C), C (1 tweet, unliked).
// A follows B and C: A's popular feed is [B's tweet, C's tweet].
func TestFeedService_PopularOrdersByLikeCount(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "A")
	store.addUser(2, "B")
	store.addUser(3, "C")
	store.follows[1] = []int64{2, 3}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	bTweet := store.addTweet(2, "b says hi", base)
	cTweet := store.addTweet(3, "c says hi", base.Add(time.Hour))
	require.NoError(t, store.AddLike(context.Background(), 1, bTweet))
	require.NoError(t, store.AddLike(context.Background(), 3, bTweet))

	views, pagination, err := newTestService(store).GetFeed(context.Background(), 1, SortPopular, 1, DefaultLimit)
	require.NoError(t, err)

	require.Len(t, views, 2)
	assert.Equal(t, bTweet, views[0].ID)
	assert.Equal(t, cTweet, views[1].ID)
	assert.Equal(t, 2, views[0].LikesCount)
	assert.Equal(t, 0, views[1].LikesCount)
	assert.False(t, pagination.HasNext)
	assert.False(t, pagination.HasPrevious)
}

func TestFeedService_LatestOrdersByCreationTime(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "A")
	store.addUser(2, "B")
	store.follows[1] = []int64{2}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	older := store.addTweet(2, "older but liked", base)
	newer := store.addTweet(2, "newer", base.Add(time.Minute))
	require.NoError(t, store.AddLike(context.Background(), 1, older))

	views, _, err := newTestService(store).GetFeed(context.Background(), 1, SortLatest, 1, DefaultLimit)
	require.NoError(t, err)

	require.Len(t, views, 2)
	assert.Equal(t, newer, views[0].ID)
	assert.Equal(t, older, views[1].ID)
}

// Identical like counts and timestamps must still produce a deterministic
// order (id descending), so repeated pagination never duplicates or drops
// an entry.
func TestFeedService_TieBreakIsTotalOrder(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "A")

	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first := store.addTweet(1, "one", stamp)
	second := store.addTweet(1, "two", stamp)
	third := store.addTweet(1, "three", stamp)

	svc := newTestService(store)

	var seen []int64
	for page := 1; page <= 3; page++ {
		views, _, err := svc.GetFeed(context.Background(), 1, SortPopular, page, 1)
		require.NoError(t, err)
		require.Len(t, views, 1)
		seen = append(seen, views[0].ID)
	}

	assert.Equal(t, []int64{third, second, first}, seen)
}

func TestFeedService_PaginationLookahead(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "A")
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		store.addTweet(1, "tweet", base.Add(time.Duration(i)*time.Minute))
	}

	svc := newTestService(store)

	views, pagination, err := svc.GetFeed(context.Background(), 1, SortLatest, 1, 2)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrevious)
	require.NotNil(t, pagination.NextPage)
	assert.Equal(t, 2, *pagination.NextPage)
	assert.Nil(t, pagination.PreviousPage)

	views, pagination, err = svc.GetFeed(context.Background(), 1, SortLatest, 2, 2)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrevious)
	assert.Nil(t, pagination.NextPage)
	require.NotNil(t, pagination.PreviousPage)
	assert.Equal(t, 1, *pagination.PreviousPage)
}

func TestFeedService_PageBeyondEndIsEmpty(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "A")
	store.addTweet(1, "only one", time.Now())

	views, pagination, err := newTestService(store).GetFeed(context.Background(), 1, SortPopular, 5, 10)
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrevious)
}

// The skip offset is (page-1)*limit; a huge page number must yield an empty
// page, not wrap around and panic on slice bounds.
func TestFeedService_HugePageNumberIsEmptyPage(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "A")
	store.addTweet(1, "only one", time.Now())

	svc := newTestService(store)

	for _, page := range []int{math.MaxInt, math.MaxInt - 1, math.MaxInt/2 + 1} {
		views, pagination, err := svc.GetFeed(context.Background(), 1, SortLatest, page, 2)
		require.NoError(t, err)
		assert.Empty(t, views)
		assert.False(t, pagination.HasNext)
		assert.True(t, pagination.HasPrevious)
	}
}

func TestFeedService_LikesCountMatchesLikersAndLikedByMe(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Viewer")
	store.addUser(2, "Author")
	store.addUser(3, "Fan")
	store.follows[1] = []int64{2}

	tweetID := store.addTweet(2, "hello", time.Now())
	require.NoError(t, store.AddLike(context.Background(), 1, tweetID))
	require.NoError(t, store.AddLike(context.Background(), 3, tweetID))

	views, _, err := newTestService(store).GetFeed(context.Background(), 1, SortPopular, 1, DefaultLimit)
	require.NoError(t, err)

	require.Len(t, views, 1)
	view := views[0]
	assert.Equal(t, len(view.Likes), view.LikesCount)
	assert.Equal(t, 2, view.LikesCount)
	assert.True(t, view.LikedByMe)
	assert.Equal(t, UserBrief{ID: 2, Name: "Author"}, view.Author)

	names := []string{view.Likes[0].Name, view.Likes[1].Name}
	assert.Contains(t, names, "Viewer")
	assert.Contains(t, names, "Fan")
}

func TestFeedService_FeedIncludesOwnTweetsWithZeroFollows(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Loner")
	tweetID := store.addTweet(1, "talking to myself", time.Now())

	views, _, err := newTestService(store).GetFeed(context.Background(), 1, SortPopular, 1, DefaultLimit)
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, tweetID, views[0].ID)
	assert.False(t, views[0].LikedByMe)
}

func TestFeedService_CreateTweet_RejectsEmptyAndOversizedContent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.CreateTweet(context.Background(), 1, "   \t ", nil)
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindValidation, apiErr.Kind)

	_, err = svc.CreateTweet(context.Background(), 1, strings.Repeat("я", 1001), nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindValidation, apiErr.Kind)

	// exactly at the limit is fine
	id, err := svc.CreateTweet(context.Background(), 1, strings.Repeat("я", 1000), nil)
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestFeedService_CreateTweet_TrimsContent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	id, err := svc.CreateTweet(context.Background(), 1, "  hello world  ", nil)
	require.NoError(t, err)

	tweet, err := store.TweetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "hello world", tweet.Content)
}

func TestFeedService_CreateTweet_RejectsForeignMedia(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Author")
	store.addUser(2, "Other")
	store.medias[10] = dbmysql.Media{ID: 10, Path: "/media/mine.png", UploaderID: 1}
	store.medias[11] = dbmysql.Media{ID: 11, Path: "/media/theirs.png", UploaderID: 2}

	svc := newTestService(store)

	_, err := svc.CreateTweet(context.Background(), 1, "with attachments", []int64{10, 11})
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindForbidden, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "media")

	// all-or-nothing: nothing was created
	assert.Empty(t, store.tweets)
}

func TestFeedService_CreateTweet_RejectsMissingMedia(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Author")
	store.medias[10] = dbmysql.Media{ID: 10, Path: "/media/mine.png", UploaderID: 1}

	svc := newTestService(store)

	_, err := svc.CreateTweet(context.Background(), 1, "with attachments", []int64{10, 99})
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindNotFound, apiErr.Kind)
	assert.Empty(t, store.tweets)
}

func TestFeedService_CreateTweet_AttachmentsKeepRequestOrder(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Author")
	store.medias[10] = dbmysql.Media{ID: 10, Path: "/media/first.png", UploaderID: 1}
	store.medias[11] = dbmysql.Media{ID: 11, Path: "/media/second.png", UploaderID: 1}

	svc := newTestService(store)

	_, err := svc.CreateTweet(context.Background(), 1, "two attachments", []int64{10, 11})
	require.NoError(t, err)

	views, _, err := svc.GetFeed(context.Background(), 1, SortPopular, 1, DefaultLimit)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, []string{"/media/first.png", "/media/second.png"}, views[0].Attachments)
}

func TestFeedService_DeleteTweet_OnlyAuthorMayDelete(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Author")
	store.addUser(2, "Other")
	tweetID := store.addTweet(1, "mine", time.Now())

	svc := newTestService(store)

	err := svc.DeleteTweet(context.Background(), 2, tweetID)
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindForbidden, apiErr.Kind)

	require.NoError(t, svc.DeleteTweet(context.Background(), 1, tweetID))
	assert.Empty(t, store.tweets)

	err = svc.DeleteTweet(context.Background(), 1, tweetID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindNotFound, apiErr.Kind)
}

func TestFeedService_LikeAndUnlikeAreIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addUser(1, "Fan")
	store.addUser(2, "Author")
	tweetID := store.addTweet(2, "likeable", time.Now())

	svc := newTestService(store)

	require.NoError(t, svc.LikeTweet(context.Background(), 1, tweetID))
	require.NoError(t, svc.LikeTweet(context.Background(), 1, tweetID))
	assert.Len(t, store.likes, 1)

	require.NoError(t, svc.UnlikeTweet(context.Background(), 1, tweetID))
	require.NoError(t, svc.UnlikeTweet(context.Background(), 1, tweetID))
	assert.Empty(t, store.likes)
}

func TestFeedService_LikeUnknownTweetIsNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	err := svc.LikeTweet(context.Background(), 1, 404)
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindNotFound, apiErr.Kind)
	assert.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestParseSort(t *testing.T) {
	mode, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortPopular, mode)

	mode, err = ParseSort("latest")
	require.NoError(t, err)
	assert.Equal(t, SortLatest, mode)

	_, err = ParseSort("controversial")
	var apiErr *common.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, common.KindValidation, apiErr.Kind)
}
