package preview

import (
	"errors"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned for an unknown or released handle.
	ErrNotFound = errors.New("preview not found")
	// ErrTooLarge is returned when a selected file exceeds the size cap.
	ErrTooLarge = errors.New("preview file too large")
)

// Object is one locally selected file held for preview. It is only reachable
// through its Handle and is never forwarded anywhere.
type Object struct {
	Handle      string
	Name        string
	ContentType string
	Data        []byte

	owner    string
	lastSeen time.Time
}

// Limits bound what a Registry holds. Zero values disable a limit.
type Limits struct {
	// MaxBytes rejects files larger than this.
	MaxBytes int64
	// MaxLive caps live previews; the least recently seen one is released
	// to make room.
	MaxLive int
	// TTL releases previews not seen for this long on the next Sweep.
	TTL time.Duration
}

// Registry holds at most one preview object per owner. Replacing an owner's
// preview releases the previous object before the new one is created.
type Registry struct {
	mu       sync.Mutex
	limits   Limits
	now      func() time.Time
	byHandle map[string]*Object
	byOwner  map[string]string // owner -> handle
}

// NewRegistry creates a Registry bounded by limits.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		limits:   limits,
		now:      time.Now,
		byHandle: make(map[string]*Object),
		byOwner:  make(map[string]string),
	}
}

// Replace releases owner's current preview and, when data is non-empty,
// registers a new one. It returns nil when nothing was selected.
func (r *Registry) Replace(owner, name string, data []byte) (*Object, error) {
	if r.limits.MaxBytes > 0 && int64(len(data)) > r.limits.MaxBytes {
		return nil, ErrTooLarge
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseLocked(owner)
	if len(data) == 0 {
		return nil, nil
	}

	if r.limits.MaxLive > 0 {
		for len(r.byHandle) >= r.limits.MaxLive {
			r.evictOldestLocked()
		}
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	obj := &Object{
		Handle:      uuid.NewString(),
		Name:        name,
		ContentType: mimetype.Detect(buf).String(),
		Data:        buf,
		owner:       owner,
		lastSeen:    r.now(),
	}
	r.byHandle[obj.Handle] = obj
	r.byOwner[owner] = obj.Handle
	return obj, nil
}

// Current returns owner's live preview, if any.
func (r *Registry) Current(owner string) (*Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.byOwner[owner]
	if !ok {
		return nil, false
	}
	obj, ok := r.byHandle[h]
	if ok {
		obj.lastSeen = r.now()
	}
	return obj, ok
}

// Get resolves a handle.
func (r *Registry) Get(handle string) (*Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.byHandle[handle]
	if !ok {
		return nil, ErrNotFound
	}
	obj.lastSeen = r.now()
	return obj, nil
}

// Release drops owner's preview. Releasing twice is a no-op.
func (r *Registry) Release(owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseLocked(owner)
}

// Sweep releases every preview not seen within the TTL and returns how many
// it released.
func (r *Registry) Sweep() int {
	if r.limits.TTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.limits.TTL)
	n := 0
	for _, obj := range r.byHandle {
		if obj.lastSeen.Before(cutoff) {
			r.releaseLocked(obj.owner)
			n++
		}
	}
	return n
}

// Close releases every preview.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHandle = make(map[string]*Object)
	r.byOwner = make(map[string]string)
}

// Len returns the number of live previews.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHandle)
}

func (r *Registry) releaseLocked(owner string) {
	if h, ok := r.byOwner[owner]; ok {
		delete(r.byHandle, h)
		delete(r.byOwner, owner)
	}
}

func (r *Registry) evictOldestLocked() {
	var oldest *Object
	for _, obj := range r.byHandle {
		if oldest == nil || obj.lastSeen.Before(oldest.lastSeen) {
			oldest = obj
		}
	}
	if oldest != nil {
		r.releaseLocked(oldest.owner)
	}
}
