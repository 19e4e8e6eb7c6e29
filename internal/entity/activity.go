package entity

import "time"

type SourceType string

const (
	SourcePassiveDevice SourceType = "passive_device"
	SourceApplication   SourceType = "application"
	SourceSystem        SourceType = "system"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourcePassiveDevice, SourceApplication, SourceSystem:
		return true
	}
	return false
}

type ActivityCategory string

const (
	CategoryProductive  ActivityCategory = "productive"
	CategoryNeutral     ActivityCategory = "neutral"
	CategoryDistracting ActivityCategory = "distracting"
	CategoryBreak       ActivityCategory = "break"
)

var ActivityCategories = []ActivityCategory{CategoryProductive, CategoryNeutral, CategoryDistracting, CategoryBreak}

func (c ActivityCategory) Valid() bool {
	switch c {
	case CategoryProductive, CategoryNeutral, CategoryDistracting, CategoryBreak:
		return true
	}
	return false
}

// ActivityEvent is one sampled activity signal. Duration is in seconds.
type ActivityEvent struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	SourceType  SourceType       `json:"sourceType"`
	Category    ActivityCategory `json:"category"`
	Duration    int64            `json:"duration"`
	Application string           `json:"application,omitempty"`
	Site        string           `json:"site,omitempty"`
	UserID      string           `json:"userId"`
}

func (e ActivityEvent) End() time.Time {
	return e.Timestamp.Add(time.Duration(e.Duration) * time.Second)
}

// Label is the application or site the event is attributed to.
func (e ActivityEvent) Label() string {
	if e.Application != "" {
		return e.Application
	}
	return e.Site
}

type TimeRange struct {
	Start time.Time `json:"start" form:"start"`
	End   time.Time `json:"end" form:"end"`
}

func (r TimeRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// Intersects reports whether the event's span touches the range, bounds inclusive.
func (r TimeRange) Intersects(e ActivityEvent) bool {
	return !e.Timestamp.After(r.End) && !e.End().Before(r.Start)
}

type AppUsage struct {
	Label      string  `json:"label"`
	Seconds    int64   `json:"seconds"`
	Minutes    float64 `json:"minutes"`
	Percentage float64 `json:"percentage"`
}

type ActivitySummary struct {
	Range           TimeRange                  `json:"range"`
	Period          string                     `json:"period"`
	EventCount      int                        `json:"eventCount"`
	TotalSeconds    int64                      `json:"totalSeconds"`
	ByCategory      map[ActivityCategory]int64 `json:"byCategory"`
	TopApplications []AppUsage                 `json:"topApplications"`
}

type IngestActivityEvent struct {
	Permission  PermissionKind   `json:"permission" binding:"required"`
	Timestamp   time.Time        `json:"timestamp"`
	SourceType  SourceType       `json:"sourceType" binding:"required"`
	Category    ActivityCategory `json:"category" binding:"required"`
	Duration    int64            `json:"duration" binding:"min=0"`
	Application string           `json:"application,omitempty"`
	Site        string           `json:"site,omitempty"`
}

type IngestActivityRequest struct {
	Events []IngestActivityEvent `json:"events" binding:"required,min=1,max=1000,dive"`
}
