package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// MemoryLocker is a keyed mutex over room ids, valid within a single process.
// Entries are dropped once nobody holds or waits for them.
type MemoryLocker struct {
	mu             sync.Mutex
	rooms          map[uuid.UUID]*roomSlot
	acquireTimeout time.Duration
}

type roomSlot struct {
	sem  chan struct{}
	refs int
}

// NewMemoryLocker creates an in-process locker.
// acquireTimeout bounds how long Lock waits; zero means wait for the context only.
func NewMemoryLocker(acquireTimeout time.Duration) *MemoryLocker {
	return &MemoryLocker{
		rooms:          make(map[uuid.UUID]*roomSlot),
		acquireTimeout: acquireTimeout,
	}
}

// Lock blocks until the room is free, the timeout expires or ctx is done
func (l *MemoryLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	if l.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.acquireTimeout)
		defer cancel()
	}

	slot := l.acquire(roomID)

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(roomID, slot)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrLockTimeout
		}
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			l.release(roomID, slot)
		})
	}, nil
}

func (l *MemoryLocker) acquire(roomID uuid.UUID) *roomSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.rooms[roomID]
	if !ok {
		slot = &roomSlot{sem: make(chan struct{}, 1)}
		l.rooms[roomID] = slot
	}
	slot.refs++
	return slot
}

func (l *MemoryLocker) release(roomID uuid.UUID, slot *roomSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot.refs--
	if slot.refs == 0 {
		delete(l.rooms, roomID)
	}
}

// held returns how many rooms currently have holders or waiters
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

var _ domain.RoomLocker = (*MemoryLocker)(nil)
