package user

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microblog/internal/common"
	"microblog/internal/dbmysql"
)

// Users is the storage contract of the user service.
type Users interface {
	ByAPIKey(ctx context.Context, apiKey string) (*dbmysql.User, error)
	ByID(ctx context.Context, id int64) (*dbmysql.User, error)
	All(ctx context.Context) ([]dbmysql.User, error)
	FollowersOf(ctx context.Context, userID int64) ([]dbmysql.User, error)
	FollowingOf(ctx context.Context, userID int64) ([]dbmysql.User, error)
	FolloweeIDSet(ctx context.Context, followerID int64) (map[int64]bool, error)
	CreateFollow(ctx context.Context, followerID, followeeID int64) error
	DeleteFollow(ctx context.Context, followerID, followeeID int64) error
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ByAPIKey resolves a credential to its user row. An unknown key is an
// unauthorized error, not an internal one; this is the contract the auth
// middleware relies on.
func (r *UserRepository) ByAPIKey(ctx context.Context, apiKey string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).First(&user, "api_key = ?", apiKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.Unauthorizedf("invalid api key")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ByID(ctx context.Context, id int64) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	return &user, err
}

func (r *UserRepository) All(ctx context.Context) ([]dbmysql.User, error) {
	var users []dbmysql.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *UserRepository) FollowersOf(ctx context.Context, userID int64) ([]dbmysql.User, error) {
	var users []dbmysql.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) FollowingOf(ctx context.Context, userID int64) ([]dbmysql.User, error) {
	var users []dbmysql.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("users.id").
		Find(&users).Error
	return users, err
}

func (r *UserRepository) FolloweeIDSet(ctx context.Context, followerID int64) (map[int64]bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CreateFollow is idempotent: the (follower, followee) unique constraint
// absorbs duplicate-insert races.
func (r *UserRepository) CreateFollow(ctx context.Context, followerID, followeeID int64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&dbmysql.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
}

func (r *UserRepository) DeleteFollow(ctx context.Context, followerID, followeeID int64) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&dbmysql.Follow{}).Error
}
