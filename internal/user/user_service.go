package user

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"microblog/internal/common"
	"microblog/internal/dbmysql"
)

type Brief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Profile struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Followers []Brief `json:"followers"`
	Following []Brief `json:"following"`
}

type ListedUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsMe        bool   `json:"is_me"`
	IsFollowing bool   `json:"is_following"`
}

type UserService struct {
	repo Users
}

func NewUserService(repo Users) *UserService {
	return &UserService{repo: repo}
}

// Profile assembles a user with its follower and following briefs.
func (s *UserService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	followers, err := s.repo.FollowersOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load followers: %w", err)
	}
	following, err := s.repo.FollowingOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}

	profile := &Profile{
		ID:        u.ID,
		Name:      u.Name,
		Followers: make([]Brief, 0, len(followers)),
		Following: make([]Brief, 0, len(following)),
	}
	for _, f := range followers {
		profile.Followers = append(profile.Followers, Brief{ID: f.ID, Name: f.Name})
	}
	for _, f := range following {
		profile.Following = append(profile.Following, Brief{ID: f.ID, Name: f.Name})
	}
	return profile, nil
}

// List returns every user with the viewer's follow state flags.
func (s *UserService) List(ctx context.Context, viewerID int64) ([]ListedUser, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	followees, err := s.repo.FolloweeIDSet(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load followees: %w", err)
	}

	listed := make([]ListedUser, 0, len(users))
	for _, u := range users {
		listed = append(listed, ListedUser{
			ID:          u.ID,
			Name:        u.Name,
			IsMe:        u.ID == viewerID,
			IsFollowing: followees[u.ID],
		})
	}
	return listed, nil
}

// Follow creates a directed follow edge. Self-follow is rejected; a
// duplicate follow is a silent success.
func (s *UserService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return common.BadRequestf("you cannot follow yourself")
	}
	if err := s.ensureUserExists(ctx, followeeID); err != nil {
		return err
	}
	if err := s.repo.CreateFollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	return nil
}

// Unfollow removes the edge; unfollowing a non-relation is a silent
// success.
func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.ensureUserExists(ctx, followeeID); err != nil {
		return err
	}
	if err := s.repo.DeleteFollow(ctx, followerID, followeeID); err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// Followers lists the users following userID.
func (s *UserService) Followers(ctx context.Context, userID int64) ([]Brief, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.repo.FollowersOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load followers: %w", err)
	}
	return toBriefs(users), nil
}

// Following lists the users userID follows.
func (s *UserService) Following(ctx context.Context, userID int64) ([]Brief, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.repo.FollowingOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load following: %w", err)
	}
	return toBriefs(users), nil
}

func (s *UserService) ensureUserExists(ctx context.Context, userID int64) error {
	if _, err := s.repo.ByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NotFoundf("user not found")
		}
		return fmt.Errorf("load user: %w", err)
	}
	return nil
}

func toBriefs(users []dbmysql.User) []Brief {
	briefs := make([]Brief, 0, len(users))
	for _, u := range users {
		briefs = append(briefs, Brief{ID: u.ID, Name: u.Name})
	}
	return briefs
}
