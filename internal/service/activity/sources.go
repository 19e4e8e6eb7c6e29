package activity

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dinerozz/nudge-engine/internal/entity"
)

// SourceTypeFor maps a permission kind to the source type its events carry.
func SourceTypeFor(kind entity.PermissionKind) entity.SourceType {
	switch kind {
	case entity.PermissionApplicationTracking:
		return entity.SourceApplication
	case entity.PermissionSystemMetrics, entity.PermissionIdleDetection:
		return entity.SourceSystem
	}
	return entity.SourcePassiveDevice
}

const maxBufferedPerSource = 1000

type bufferKey struct {
	userID string
	kind   entity.PermissionKind
}

// IngestHub buffers events pushed by external agents (browser extension,
// desktop tracker) until the owning collector samples them.
type IngestHub struct {
	mu      sync.Mutex
	buffers map[bufferKey][]entity.ActivityEvent
}

func NewIngestHub() *IngestHub {
	return &IngestHub{buffers: make(map[bufferKey][]entity.ActivityEvent)}
}

// Push buffers events for userID. Each kind keeps at most
// maxBufferedPerSource events, oldest dropped first.
func (h *IngestHub) Push(userID string, kind entity.PermissionKind, events ...entity.ActivityEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := bufferKey{userID: userID, kind: kind}
	buf := append(h.buffers[key], events...)
	if over := len(buf) - maxBufferedPerSource; over > 0 {
		buf = buf[over:]
	}
	h.buffers[key] = buf
}

func (h *IngestHub) Pending(userID string, kind entity.PermissionKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buffers[bufferKey{userID: userID, kind: kind}])
}

// Forget drops every buffered event for userID.
func (h *IngestHub) Forget(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key := range h.buffers {
		if key.userID == userID {
			delete(h.buffers, key)
		}
	}
}

func (h *IngestHub) drain(userID string, kind entity.PermissionKind) []entity.ActivityEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := bufferKey{userID: userID, kind: kind}
	buf := h.buffers[key]
	delete(h.buffers, key)
	return buf
}

// Sources returns one Source per permission kind, all draining this hub.
func (h *IngestHub) Sources() []Source {
	sources := make([]Source, 0, len(entity.PermissionKinds))
	for _, kind := range entity.PermissionKinds {
		sources = append(sources, &ingestSource{hub: h, kind: kind})
	}
	return sources
}

type ingestSource struct {
	hub  *IngestHub
	kind entity.PermissionKind
}

func (s *ingestSource) Kind() entity.PermissionKind {
	return s.kind
}

func (s *ingestSource) Sample(ctx context.Context, userID string, now time.Time) ([]entity.ActivityEvent, error) {
	return s.hub.drain(userID, s.kind), nil
}

// FromIngest converts a pushed event, stamping now when it carries no timestamp.
func FromIngest(in entity.IngestActivityEvent, now time.Time) entity.ActivityEvent {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}
	sourceType := in.SourceType
	if !sourceType.Valid() {
		sourceType = SourceTypeFor(in.Permission)
	}
	return entity.ActivityEvent{
		Timestamp:   ts,
		SourceType:  sourceType,
		Category:    in.Category,
		Duration:    in.Duration,
		Application: in.Application,
		Site:        in.Site,
	}
}

var syntheticLabels = map[entity.ActivityCategory][]string{
	entity.CategoryProductive:  {"VS Code", "Terminal", "github.com", "Notion", "Figma"},
	entity.CategoryNeutral:     {"Slack", "Mail", "calendar.google.com"},
	entity.CategoryDistracting: {"youtube.com", "reddit.com", "twitter.com", "news.ycombinator.com"},
	entity.CategoryBreak:       {""},
}

// SyntheticSource emits one randomly categorized event per sample, standing
// in for platform signals that are not wired.
type SyntheticSource struct {
	kind     entity.PermissionKind
	interval time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSyntheticSource(kind entity.PermissionKind, interval time.Duration, rnd *rand.Rand) *SyntheticSource {
	return &SyntheticSource{kind: kind, interval: interval, rnd: rnd}
}

func (s *SyntheticSource) Kind() entity.PermissionKind {
	return s.kind
}

func (s *SyntheticSource) Sample(ctx context.Context, userID string, now time.Time) ([]entity.ActivityEvent, error) {
	s.mu.Lock()
	roll := s.rnd.IntN(100)
	pick := s.rnd.IntN(1 << 16)
	s.mu.Unlock()

	var category entity.ActivityCategory
	switch {
	case s.kind == entity.PermissionIdleDetection:
		category = entity.CategoryBreak
	case roll < 55:
		category = entity.CategoryProductive
	case roll < 75:
		category = entity.CategoryNeutral
	case roll < 95:
		category = entity.CategoryDistracting
	default:
		category = entity.CategoryBreak
	}

	labels := syntheticLabels[category]
	label := labels[pick%len(labels)]

	event := entity.ActivityEvent{
		Timestamp:  now.Add(-s.interval),
		SourceType: SourceTypeFor(s.kind),
		Category:   category,
		Duration:   int64(s.interval / time.Second),
	}
	if s.kind == entity.PermissionBrowserTracking {
		event.Site = label
	} else {
		event.Application = label
	}
	return []entity.ActivityEvent{event}, nil
}
