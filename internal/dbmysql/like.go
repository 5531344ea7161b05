package dbmysql

// Like is unique per (user, tweet); the constraint is the safety net against
// duplicate-insert races, inserts use ON CONFLICT DO NOTHING.
type Like struct {
	ID      int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	UserID  int64 `gorm:"column:user_id;not null;uniqueIndex:uq_like_user_tweet" json:"user_id"`
	TweetID int64 `gorm:"column:tweet_id;not null;uniqueIndex:uq_like_user_tweet" json:"tweet_id"`
}

func (Like) TableName() string {
	return "likes"
}
