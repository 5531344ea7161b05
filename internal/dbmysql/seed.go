package dbmysql

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"
)

var userFixtures = []struct {
	Name   string
	APIKey string
}{
	{"Cool Dev", "test"},
	{"Alice", "alice"},
	{"Bob", "bob"},
}

var followFixtures = [][2]string{
	{"test", "alice"},
	{"test", "bob"},
	{"alice", "bob"},
	{"alice", "test"},
	{"bob", "alice"},
	{"bob", "test"},
}

// 1x1 transparent PNG used as the demo attachment.
const sampleImageB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR4nGNgYAAAAAMAASsJTYQAAAAASUVORK5CYII="

// Seed populates demo users, follows, tweets and likes. It only fills tables
// that are empty, so running it repeatedly is safe.
func Seed(db *gorm.DB, mediaDir string) error {
	users, err := seedUsers(db)
	if err != nil {
		return err
	}

	if err := seedFollows(db, users); err != nil {
		return err
	}

	return seedTweets(db, users, mediaDir)
}

func seedUsers(db *gorm.DB) (map[string]User, error) {
	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		for _, f := range userFixtures {
			if err := db.Create(&User{Name: f.Name, APIKey: f.APIKey}).Error; err != nil {
				return nil, err
			}
		}
	}

	var all []User
	if err := db.Find(&all).Error; err != nil {
		return nil, err
	}
	users := make(map[string]User, len(all))
	for _, u := range all {
		users[u.APIKey] = u
	}
	return users, nil
}

func seedFollows(db *gorm.DB, users map[string]User) error {
	var existing []Follow
	if err := db.Find(&existing).Error; err != nil {
		return err
	}
	seen := make(map[[2]int64]bool, len(existing))
	for _, f := range existing {
		seen[[2]int64{f.FollowerID, f.FolloweeID}] = true
	}

	for _, pair := range followFixtures {
		follower, okF := users[pair[0]]
		followee, okT := users[pair[1]]
		if !okF || !okT {
			continue
		}
		key := [2]int64{follower.ID, followee.ID}
		if seen[key] {
			continue
		}
		if err := db.Create(&Follow{FollowerID: follower.ID, FolloweeID: followee.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedTweets(db *gorm.DB, users map[string]User, mediaDir string) error {
	var count int64
	if err := db.Model(&Tweet{}).Count(&count).Error; err != nil {
		return err
	}
	alice, okA := users["alice"]
	bob, okB := users["bob"]
	if count > 0 || !okA || !okB {
		return nil
	}

	tweets := []*Tweet{
		{Content: "Добро пожаловать в корпоративный микроблог!", AuthorID: alice.ID},
		{Content: "Мы теперь можем делиться новостями и идеями ⚡️", AuthorID: bob.ID},
		{Content: "Лайкайте и комментируйте — это помогает!", AuthorID: alice.ID},
	}
	for _, t := range tweets {
		if err := db.Create(t).Error; err != nil {
			return err
		}
	}

	if viewer, ok := users["test"]; ok {
		likes := []Like{
			{UserID: viewer.ID, TweetID: tweets[0].ID},
			{UserID: viewer.ID, TweetID: tweets[1].ID},
		}
		if err := db.Create(&likes).Error; err != nil {
			return err
		}
	}
	if err := db.Create(&Like{UserID: alice.ID, TweetID: tweets[1].ID}).Error; err != nil {
		return err
	}

	name, err := ensureSampleMedia(mediaDir)
	if err != nil {
		return err
	}
	media := Media{Path: "/media/" + name, UploaderID: alice.ID}
	if err := db.Create(&media).Error; err != nil {
		return err
	}
	return db.Create(&TweetMedia{TweetID: tweets[0].ID, MediaID: media.ID}).Error
}

func ensureSampleMedia(mediaDir string) (string, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	name := "welcome.png"
	path := filepath.Join(mediaDir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	}
	data, err := base64.StdEncoding.DecodeString(sampleImageB64)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write sample media: %w", err)
	}
	return name, nil
}
