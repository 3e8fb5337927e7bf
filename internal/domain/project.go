package domain

import (
	"encoding/json"
	"time"
)

type ProjectStatus string

const (
	ProjectCompleted  ProjectStatus = "completed"
	ProjectInProgress ProjectStatus = "in-progress"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectCompleted || s == ProjectInProgress
}

// Project is a reference installation shown on the projects page.
type Project struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	CreatedAt       time.Time       `json:"createdAt"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Status          ProjectStatus   `json:"status"`
	ContractDate    string          `json:"contractDate,omitempty"`
	Location        string          `json:"location,omitempty"`
	Client          string          `json:"client,omitempty"`
	Image           *Image          `json:"image,omitempty"`
	FullDescription json.RawMessage `json:"fullDescription,omitempty"`
	SortOrder       *float64        `json:"sortOrder,omitempty"`
}

func (p *Project) Order() float64 {
	if p.SortOrder == nil {
		return 0
	}
	return *p.SortOrder
}
