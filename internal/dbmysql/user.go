package dbmysql

type User struct {
	ID     int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name   string `gorm:"column:name;size:255;not null" json:"name"`
	APIKey string `gorm:"column:api_key;uniqueIndex;size:255;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}
