package audit

import (
	"fmt"

	"github.com/doodlesbykumbi/ownership-manager/pkg/model"
)

// TransferEvent is the syslog form of one audit entry.
type TransferEvent struct {
	Tenant string
	Entry  model.AuditEntry
}

func (e TransferEvent) MessageID() string {
	return "ownership-transfer"
}

func (e TransferEvent) success() bool {
	return e.Entry.Status == model.AuditStatusSuccess
}

func (e TransferEvent) Message() string {
	en := e.Entry
	if e.success() {
		return fmt.Sprintf("%s transferred %s %s from %s to %s",
			en.ChangedBy, en.ObjectType, en.ObjectID, en.OldOwnerID, en.NewOwnerID)
	}
	msg := fmt.Sprintf("%s tried to transfer %s %s from %s to %s",
		en.ChangedBy, en.ObjectType, en.ObjectID, en.OldOwnerID, en.NewOwnerID)
	if en.ErrorMessage != nil && *en.ErrorMessage != "" {
		msg += ": " + *en.ErrorMessage
	}
	return msg
}

func (e TransferEvent) Severity() Severity {
	if e.success() {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e TransferEvent) Facility() int {
	return FacilityAuthPriv
}

func (e TransferEvent) StructuredData() map[string]map[string]string {
	en := e.Entry
	result := "failure"
	if e.success() {
		result = "success"
	}
	return map[string]map[string]string{
		SDIDTenant: {"slug": e.Tenant},
		SDIDAuth:   {"user": en.ChangedBy},
		SDIDSubject: {
			"object":    en.ObjectID,
			"type":      string(en.ObjectType),
			"old_owner": en.OldOwnerID,
			"new_owner": en.NewOwnerID,
		},
		SDIDAction: {
			"operation": "transfer",
			"result":    result,
		},
	}
}
