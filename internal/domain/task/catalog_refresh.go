package task

import "time"

const CatalogRefreshTaskType = "CatalogRefreshTask"

// CatalogRefreshTask asks a worker to reload the catalog snapshot from the CMS.
type CatalogRefreshTask struct {
	Reason      string    `json:"reason"`                // "webhook", "startup", ...
	DocumentID  string    `json:"document_id,omitempty"` // CMS document that changed, if known
	RequestedAt time.Time `json:"requested_at"`
}

func (t *CatalogRefreshTask) TaskType() string {
	return CatalogRefreshTaskType
}

func (t *CatalogRefreshTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
