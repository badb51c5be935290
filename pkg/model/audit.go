package model

import "time"

const (
	AuditStatusSuccess = "success"
	AuditStatusFailed  = "failed"
)

// AuditEntry records one attempted ownership change. Entries are append-only.
type AuditEntry struct {
	ID           int64      `gorm:"column:id" json:"id"`
	ObjectID     string     `gorm:"column:object_id" json:"object_id"`
	ObjectType   ObjectType `gorm:"column:object_type" json:"object_type"`
	ObjectName   string     `gorm:"column:object_name" json:"object_name"`
	OldOwnerID   string     `gorm:"column:old_owner_id" json:"old_owner_id"`
	OldOwnerName string     `gorm:"column:old_owner_name" json:"old_owner_name"`
	NewOwnerID   string     `gorm:"column:new_owner_id" json:"new_owner_id"`
	NewOwnerName string     `gorm:"column:new_owner_name" json:"new_owner_name"`
	ChangedBy    string     `gorm:"column:changed_by" json:"changed_by"`
	ChangeReason string     `gorm:"column:change_reason" json:"change_reason"`
	ChangeDate   time.Time  `gorm:"column:change_date" json:"change_date"`
	Status       string     `gorm:"column:status" json:"status"`
	ErrorMessage *string    `gorm:"column:error_message" json:"error_message,omitempty"`
}
