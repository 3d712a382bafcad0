package auditlog

import (
	"splitters/pkg/models"

	"go.uber.org/zap"
)

// Auditlog writes one structured log line per destructive action. Entries are not persisted.
type Auditlog struct {
	log *zap.Logger
}

type Auditable interface {
	CreateLogView() models.AuditLog
}

func (a *Auditlog) Log(action string, data map[string]interface{}, item Auditable) models.AuditLog {
	entry := item.CreateLogView()
	entry.Action = action
	for k, v := range data {
		if entry.Data == nil {
			entry.Data = make(map[string]interface{}, len(data))
		}
		entry.Data[k] = v
	}

	a.log.Info("Audit",
		zap.String("action", entry.Action),
		zap.String("resource_type", entry.ResourceType),
		zap.String("resource_id", entry.ResourceID),
		zap.Any("data", entry.Data),
	)

	return entry
}

func NewAuditLog(logger *zap.Logger) *Auditlog {
	a := Auditlog{log: logger.Named("audit")}

	return &a
}
