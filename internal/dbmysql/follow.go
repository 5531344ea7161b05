package dbmysql

// Follow is a directed edge: follower -> followee. Unique per pair, no
// automatic reciprocity.
type Follow struct {
	ID         int64 `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	FollowerID int64 `gorm:"column:follower_id;not null;uniqueIndex:uq_follow_pair" json:"follower_id"`
	FolloweeID int64 `gorm:"column:followee_id;not null;uniqueIndex:uq_follow_pair" json:"followee_id"`
}

func (Follow) TableName() string {
	return "follows"
}
