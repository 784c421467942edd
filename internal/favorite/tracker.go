package favorite

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/session"
)

// SignInMessage is returned with AuthenticationRequired on a toggle without a session.
const SignInMessage = "Please sign in to save favorites."

// Remote is the favorite part of the catalog API.
type Remote interface {
	CheckFavorite(ctx context.Context, productID string) (bool, error)
	ToggleFavorite(ctx context.Context, productID string) (bool, error)
}

// Tracker keeps the favorited ids of the current user. Changes are applied
// only once the remote store confirms them, and at most one toggle per id is
// in flight at any time.
type Tracker struct {
	remote  Remote
	session session.Session
	ids     *domain.IDShape

	mu        sync.Mutex
	favorites map[string]struct{}
	inflight  map[string]struct{}
	toggles   map[string]uint64 // toggles started per id
	states    map[string]State
}

func NewTracker(remote Remote, sess session.Session, ids *domain.IDShape) *Tracker {
	if ids == nil {
		ids = domain.MustIDShape(domain.DefaultIDPattern)
	}
	return &Tracker{
		remote:    remote,
		session:   sess,
		ids:       ids,
		favorites: make(map[string]struct{}),
		inflight:  make(map[string]struct{}),
		toggles:   make(map[string]uint64),
		states:    make(map[string]State),
	}
}

func (t *Tracker) IsFavorite(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.favorites[id]
	return ok
}

// InFlight reports whether a toggle for id is waiting on the remote store.
// Callers disable the toggle control while it is.
func (t *Tracker) InFlight(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.inflight[id]
	return ok
}

func (t *Tracker) State(id string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[id]
}

// Favorites returns the favorited ids in sorted order.
func (t *Tracker) Favorites() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.favorites))
	for id := range t.favorites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle flips the favorite flag of id on the remote store and returns the
// state it confirmed. A toggle for an id that is already in flight sends
// nothing and returns the current state.
func (t *Tracker) Toggle(ctx context.Context, id string) (bool, error) {
	if !t.ids.Valid(id) {
		return false, domain.Validation(fmt.Sprintf("%q is not a valid product id", id))
	}
	if !session.Authenticated(t.session) {
		return false, domain.NewError(domain.CodeAuthenticationRequired, SignInMessage)
	}

	t.mu.Lock()
	if _, busy := t.inflight[id]; busy {
		_, current := t.favorites[id]
		t.mu.Unlock()
		log.Debugf("Favorite toggle for %s already in flight, ignoring", id)
		return current, nil
	}
	t.inflight[id] = struct{}{}
	t.toggles[id]++
	t.transition(id, Pending)
	t.mu.Unlock()

	confirmed, err := t.remote.ToggleFavorite(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inflight, id)

	if err != nil {
		t.transition(id, Failed)
		_, current := t.favorites[id]
		log.Warnf("⚠️ Favorite toggle for %s failed: %v", id, err)
		return current, err
	}

	t.set(id, confirmed)
	t.transition(id, Confirmed)
	return confirmed, nil
}

// Refresh asks the remote store whether id is favorited. Ids of the wrong
// shape, anonymous users and ids with a toggle in flight are answered
// locally.
func (t *Tracker) Refresh(ctx context.Context, id string) (bool, error) {
	if !t.ids.Valid(id) || !session.Authenticated(t.session) {
		return false, nil
	}

	t.mu.Lock()
	_, busy := t.inflight[id]
	_, current := t.favorites[id]
	seen := t.toggles[id]
	t.mu.Unlock()
	if busy {
		return current, nil
	}

	isFavorite, err := t.remote.CheckFavorite(ctx, id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		_, current = t.favorites[id]
		return current, err
	}

	// a toggle that started meanwhile owns the value
	_, busy = t.inflight[id]
	if !busy && t.toggles[id] == seen {
		t.set(id, isFavorite)
	}
	_, current = t.favorites[id]
	return current, nil
}

func (t *Tracker) set(id string, favorite bool) {
	if favorite {
		t.favorites[id] = struct{}{}
	} else {
		delete(t.favorites, id)
	}
}

// transition must be called with mu held.
func (t *Tracker) transition(id string, to State) {
	from := t.states[id]
	if !CanTransition(from, to) {
		log.Errorf("❌ Invalid favorite transition for %s: %s -> %s", id, from, to)
		return
	}
	t.states[id] = to
}
