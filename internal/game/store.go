package game

import (
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RoomStore is the in-memory table of active rooms. Rooms are keyed by
// their internal id; the human-shareable 4-digit code is unique among
// active rooms at allocation time. Active rooms are never persisted: a
// process restart loses in-flight games.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand // guarded by mu
}

// NewRoomStore creates a room store. A nil rng falls back to a
// time-seeded source; tests inject a deterministic one.
func NewRoomStore(rng *rand.Rand) *RoomStore {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RoomStore{
		rooms: make(map[string]*Room),
		rng:   rng,
	}
}

// Create assigns the room a fresh id, allocates a code when requested,
// and inserts it into the store.
func (s *RoomStore) Create(room *Room, withCode bool) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room.RoomID = uuid.NewString()
	if withCode {
		room.RoomCode = s.allocateCodeLocked()
	}
	room.CreatedAt = time.Now()
	s.rooms[room.RoomID] = room
	return room
}

// allocateCodeLocked draws 4-digit codes until one is free among active
// rooms. With a 9000-code space and a handful of rooms the retry loop is
// effectively non-blocking; uniqueness across restarts is not guaranteed.
func (s *RoomStore) allocateCodeLocked() string {
	for {
		code := strconv.Itoa(1000 + s.rng.Intn(9000))
		if !s.codeInUseLocked(code) {
			return code
		}
	}
}

func (s *RoomStore) codeInUseLocked(code string) bool {
	for _, room := range s.rooms {
		if room.RoomCode == code {
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of a room for read-only callers.
func (s *RoomStore) Snapshot(roomID string) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	return room.snapshot(), true
}

// FindByCode resolves a room code to its internal id with a linear scan.
// Codes are the user-facing handle, so the scan stays small.
func (s *RoomStore) FindByCode(code string) (string, bool) {
	if code == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, room := range s.rooms {
		if room.RoomCode == code {
			return id, true
		}
	}
	return "", false
}

// Update runs fn against the live room under the store lock. When fn
// reports remove, the room is deleted in the same critical section so no
// caller can observe a finished room.
func (s *RoomStore) Update(roomID string, fn func(*Room) (remove bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	remove, err := fn(room)
	if remove {
		delete(s.rooms, roomID)
	}
	return err
}

// Len reports the number of active rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
