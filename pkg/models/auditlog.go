package models

type AuditLog struct {
	ResourceID   string                 `json:"resource_id"`
	ResourceType string                 `json:"resource_type"`
	Action       string                 `json:"action"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

func (l *Location) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   l.ID,
		ResourceType: "location",
		Data:         map[string]interface{}{"name": l.Name, "splitters": len(l.Splitters)},
	}
}

func (s *Splitter) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   s.ID,
		ResourceType: "splitter",
		Data:         map[string]interface{}{"location_id": s.LocationID, "model": s.Model, "port": s.Port},
	}
}
