package model

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	UserID        string `gorm:"column:user_id" json:"user_id"`
	UserName      string `gorm:"column:user_name" json:"user_name"`
	UserDirectory string `gorm:"column:user_directory" json:"user_directory"`
	UserIDAttr    string `gorm:"column:user_id_attr" json:"user_id_attr"`
	Email         string `gorm:"column:email" json:"email"`
	Status        string `gorm:"column:status" json:"status"`
}
