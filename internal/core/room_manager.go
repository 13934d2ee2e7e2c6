package core

import (
	"sort"
	"sync"
	"time"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/google/uuid"
)

// RoomManagerImpl keeps active rooms. Ids are fresh uuids, so a stopped
// room id is never handed out again.
type RoomManagerImpl struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]RoomService
	publish func(domain.Event)
}

func NewRoomManager(bus *Bus) RoomManager {
	m := &RoomManagerImpl{rooms: make(map[domain.RoomID]RoomService)}
	if bus != nil {
		m.publish = func(ev domain.Event) { bus.Publish(ev) }
	}
	return m
}

func (m *RoomManagerImpl) Create(host domain.UserID, title string) RoomService {
	room := domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		HostID:    host,
		Title:     title,
		StartedAt: time.Now().UTC(),
	}
	svc := NewRoomService(room, m.publish)
	m.mu.Lock()
	m.rooms[room.ID] = svc
	m.mu.Unlock()
	return svc
}

func (m *RoomManagerImpl) Get(id domain.RoomID) (RoomService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

func (m *RoomManagerImpl) List() []RoomInfo {
	m.mu.RLock()
	rooms := make([]RoomService, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		room := r.Room()
		out = append(out, RoomInfo{
			ID:          room.ID,
			HostID:      room.HostID,
			Title:       room.Title,
			StartedAt:   room.StartedAt,
			MemberCount: r.MemberCount(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (m *RoomManagerImpl) StopRoom(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}
