package entity

import "time"

type FocusSignal string

const (
	SignalPageHidden   FocusSignal = "page_hidden"
	SignalPageVisible  FocusSignal = "page_visible"
	SignalWindowBlur   FocusSignal = "window_blur"
	SignalWindowFocus  FocusSignal = "window_focus"
	SignalBeforeUnload FocusSignal = "before_unload"
)

func (s FocusSignal) Valid() bool {
	switch s {
	case SignalPageHidden, SignalPageVisible, SignalWindowBlur, SignalWindowFocus, SignalBeforeUnload:
		return true
	}
	return false
}

type FocusState string

const (
	FocusIdle     FocusState = "idle"
	FocusTracking FocusState = "tracking"
	FocusPaused   FocusState = "paused"
	FocusStopped  FocusState = "stopped"
)

// FocusStats durations are whole seconds; TotalDuration == FocusTime + DistractionTime.
type FocusStats struct {
	SessionID       string     `json:"sessionId,omitempty"`
	UserID          string     `json:"userId,omitempty"`
	TaskID          string     `json:"taskId,omitempty"`
	State           FocusState `json:"state"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	TotalDuration   int64      `json:"totalDuration"`
	FocusTime       int64      `json:"focusTime"`
	DistractionTime int64      `json:"distractionTime"`
	Distractions    int        `json:"distractions"`
	IsPaused        bool       `json:"isPaused"`
	FocusRatio      float64    `json:"focusRatio"`
}

type FocusSessionRecord struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"sessionId"`
	UserID          string    `json:"userId,omitempty"`
	TaskID          string    `json:"taskId,omitempty"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
	TotalDuration   int64     `json:"totalDuration"`
	FocusTime       int64     `json:"focusTime"`
	DistractionTime int64     `json:"distractionTime"`
	Distractions    int       `json:"distractions"`
	FocusRatio      float64   `json:"focusRatio"`
}

type StartFocusRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	TaskID    string `json:"taskId,omitempty"`
}

type FocusSignalRequest struct {
	Signal FocusSignal `json:"signal" binding:"required"`
}
