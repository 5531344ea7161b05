package dbmysql

type Media struct {
	ID         int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Path       string `gorm:"column:path;size:512;not null" json:"path"`
	UploaderID int64  `gorm:"column:uploader_id;index;not null" json:"uploader_id"`
}

func (Media) TableName() string {
	return "medias"
}
