package dbmysql

import (
	"time"
)

type Tweet struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Content   string    `gorm:"column:content;size:1000;not null" json:"content"`
	AuthorID  int64     `gorm:"column:author_id;index;not null" json:"author_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Tweet) TableName() string {
	return "tweets"
}

// TweetMedia links a tweet to one of its author's uploads. Row id order is
// the attachment insertion order.
type TweetMedia struct {
	ID      int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	TweetID int64 `gorm:"column:tweet_id;index;not null" json:"tweet_id"`
	MediaID int64 `gorm:"column:media_id;not null" json:"media_id"`
}

func (TweetMedia) TableName() string {
	return "tweet_medias"
}
