package entity

import "time"

type PermissionKind string

const (
	PermissionBrowserTracking     PermissionKind = "browser_tracking"
	PermissionApplicationTracking PermissionKind = "application_tracking"
	PermissionSystemMetrics       PermissionKind = "system_metrics"
	PermissionIdleDetection       PermissionKind = "idle_detection"
	PermissionScreenTime          PermissionKind = "screen_time"
)

var PermissionKinds = []PermissionKind{
	PermissionBrowserTracking,
	PermissionApplicationTracking,
	PermissionSystemMetrics,
	PermissionIdleDetection,
	PermissionScreenTime,
}

func (k PermissionKind) Valid() bool {
	for _, known := range PermissionKinds {
		if k == known {
			return true
		}
	}
	return false
}

type MonitoringPermissions struct {
	BrowserTracking     bool      `json:"browserTracking"`
	ApplicationTracking bool      `json:"applicationTracking"`
	SystemMetrics       bool      `json:"systemMetrics"`
	IdleDetection       bool      `json:"idleDetection"`
	ScreenTime          bool      `json:"screenTime"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

func (p MonitoringPermissions) Granted(kind PermissionKind) bool {
	switch kind {
	case PermissionBrowserTracking:
		return p.BrowserTracking
	case PermissionApplicationTracking:
		return p.ApplicationTracking
	case PermissionSystemMetrics:
		return p.SystemMetrics
	case PermissionIdleDetection:
		return p.IdleDetection
	case PermissionScreenTime:
		return p.ScreenTime
	}
	return false
}

func (p MonitoringPermissions) Any() bool {
	return len(p.GrantedKinds()) > 0
}

func (p MonitoringPermissions) GrantedKinds() []PermissionKind {
	var kinds []PermissionKind
	for _, kind := range PermissionKinds {
		if p.Granted(kind) {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// PermissionsUpdate is a partial update; nil fields keep their current value.
type PermissionsUpdate struct {
	BrowserTracking     *bool `json:"browserTracking,omitempty"`
	ApplicationTracking *bool `json:"applicationTracking,omitempty"`
	SystemMetrics       *bool `json:"systemMetrics,omitempty"`
	IdleDetection       *bool `json:"idleDetection,omitempty"`
	ScreenTime          *bool `json:"screenTime,omitempty"`
}

func (p MonitoringPermissions) Merge(u PermissionsUpdate) MonitoringPermissions {
	if u.BrowserTracking != nil {
		p.BrowserTracking = *u.BrowserTracking
	}
	if u.ApplicationTracking != nil {
		p.ApplicationTracking = *u.ApplicationTracking
	}
	if u.SystemMetrics != nil {
		p.SystemMetrics = *u.SystemMetrics
	}
	if u.IdleDetection != nil {
		p.IdleDetection = *u.IdleDetection
	}
	if u.ScreenTime != nil {
		p.ScreenTime = *u.ScreenTime
	}
	return p
}

type MonitoringStatus struct {
	Active      bool                  `json:"active"`
	Permissions MonitoringPermissions `json:"permissions"`
}
