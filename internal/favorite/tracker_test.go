package favorite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/catalogsync/internal/domain"
	"storefront/catalogsync/internal/session"
)

const productID = "64b7f0c2a1b2c3d4e5f60718"

type fakeRemote struct {
	mu          sync.Mutex
	favorites   map[string]bool
	toggleCalls int
	checkCalls  int
	toggleErr   error
	block       chan struct{}
	entered     chan struct{}

	checkBlock   chan struct{}
	checkEntered chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{favorites: map[string]bool{}}
}

func (f *fakeRemote) CheckFavorite(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	f.checkCalls++
	answer := f.favorites[id]
	block, entered := f.checkBlock, f.checkEntered
	f.mu.Unlock()

	// the answer is taken before blocking, like a response already on the wire
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return answer, nil
}

func (f *fakeRemote) ToggleFavorite(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	f.toggleCalls++
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	f.favorites[id] = !f.favorites[id]
	return f.favorites[id], nil
}

func (f *fakeRemote) calls() (toggles, checks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toggleCalls, f.checkCalls
}

func signedIn() session.Session {
	return session.Static{Value: "token"}
}

func TestTracker_ToggleConfirmsServerState(t *testing.T) {
	remote := newFakeRemote()
	tracker := NewTracker(remote, signedIn(), nil)

	assert.Equal(t, Idle, tracker.State(productID))

	fav, err := tracker.Toggle(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.True(t, tracker.IsFavorite(productID))
	assert.Equal(t, Confirmed, tracker.State(productID))
	assert.False(t, tracker.InFlight(productID))

	// The server decides: if it reports "still favorited", so do we.
	remote.favorites[productID] = false
	fav, err = tracker.Toggle(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.Equal(t, []string{productID}, tracker.Favorites())
}

func TestTracker_InFlightToggleSendsNothing(t *testing.T) {
	remote := newFakeRemote()
	remote.block = make(chan struct{})
	remote.entered = make(chan struct{}, 1)
	tracker := NewTracker(remote, signedIn(), nil)

	done := make(chan bool, 1)
	go func() {
		fav, err := tracker.Toggle(context.Background(), productID)
		assert.NoError(t, err)
		done <- fav
	}()
	<-remote.entered

	assert.True(t, tracker.InFlight(productID))
	assert.Equal(t, Pending, tracker.State(productID))

	fav, err := tracker.Toggle(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, fav)

	fav, err = tracker.Refresh(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, fav)

	close(remote.block)
	assert.True(t, <-done)

	toggles, checks := remote.calls()
	assert.Equal(t, 1, toggles)
	assert.Equal(t, 0, checks)
	assert.False(t, tracker.InFlight(productID))
}

func TestTracker_UnauthenticatedToggle(t *testing.T) {
	for name, sess := range map[string]session.Session{
		"nil session":     nil,
		"empty token":     session.Static{},
		"malformed token": session.NewJWTSession("not-a-jwt", nil),
	} {
		t.Run(name, func(t *testing.T) {
			remote := newFakeRemote()
			tracker := NewTracker(remote, sess, nil)

			_, err := tracker.Toggle(context.Background(), productID)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)
			assert.True(t, domain.IsAuthenticationRequired(err))

			toggles, _ := remote.calls()
			assert.Equal(t, 0, toggles)
			assert.Equal(t, Idle, tracker.State(productID))
		})
	}
}

func TestTracker_InvalidID(t *testing.T) {
	remote := newFakeRemote()
	tracker := NewTracker(remote, signedIn(), nil)

	for _, id := range []string{"", "42", "64b7f0c2a1b2c3d4e5f6071z", productID + "00"} {
		_, err := tracker.Toggle(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrValidation, id)

		fav, err := tracker.Refresh(context.Background(), id)
		assert.NoError(t, err)
		assert.False(t, fav)
	}

	toggles, checks := remote.calls()
	assert.Equal(t, 0, toggles)
	assert.Equal(t, 0, checks)
}

func TestTracker_CustomIDShape(t *testing.T) {
	remote := newFakeRemote()
	tracker := NewTracker(remote, signedIn(), domain.MustIDShape(`^sku-[0-9]+$`))

	fav, err := tracker.Toggle(context.Background(), "sku-1001")
	require.NoError(t, err)
	assert.True(t, fav)

	_, err = tracker.Toggle(context.Background(), productID)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTracker_FailureLeavesFavoritesUntouched(t *testing.T) {
	remote := newFakeRemote()
	tracker := NewTracker(remote, signedIn(), nil)

	_, err := tracker.Toggle(context.Background(), productID)
	require.NoError(t, err)

	remote.toggleErr = errors.New("connection reset")
	fav, err := tracker.Toggle(context.Background(), productID)
	require.Error(t, err)
	assert.True(t, fav)
	assert.True(t, tracker.IsFavorite(productID))
	assert.Equal(t, Failed, tracker.State(productID))
	assert.False(t, tracker.InFlight(productID))

	// a failed toggle can be retried
	remote.toggleErr = nil
	fav, err = tracker.Toggle(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, fav)
	assert.Equal(t, Confirmed, tracker.State(productID))
}

func TestTracker_Refresh(t *testing.T) {
	remote := newFakeRemote()
	remote.favorites[productID] = true
	tracker := NewTracker(remote, signedIn(), nil)

	fav, err := tracker.Refresh(context.Background(), productID)
	require.NoError(t, err)
	assert.True(t, fav)
	assert.True(t, tracker.IsFavorite(productID))
	assert.Equal(t, Idle, tracker.State(productID))

	anonymous := NewTracker(remote, nil, nil)
	fav, err = anonymous.Refresh(context.Background(), productID)
	require.NoError(t, err)
	assert.False(t, fav)

	_, checks := remote.calls()
	assert.Equal(t, 1, checks)
}

func TestTracker_RefreshDoesNotOverrideCompletedToggle(t *testing.T) {
	remote := newFakeRemote()
	remote.checkBlock = make(chan struct{})
	remote.checkEntered = make(chan struct{}, 1)
	tracker := NewTracker(remote, signedIn(), nil)

	type result struct {
		fav bool
		err error
	}
	refreshed := make(chan result, 1)
	go func() {
		fav, err := tracker.Refresh(context.Background(), productID)
		refreshed <- result{fav, err}
	}()
	<-remote.checkEntered

	fav, err := tracker.Toggle(context.Background(), productID)
	require.NoError(t, err)
	require.True(t, fav)

	close(remote.checkBlock)
	got := <-refreshed
	require.NoError(t, got.err)

	assert.True(t, got.fav)
	assert.True(t, tracker.IsFavorite(productID))
	assert.Equal(t, Confirmed, tracker.State(productID))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Idle, Pending, true},
		{Idle, Confirmed, false},
		{Pending, Confirmed, true},
		{Pending, Failed, true},
		{Pending, Pending, false},
		{Confirmed, Pending, true},
		{Confirmed, Failed, false},
		{Failed, Pending, true},
		{Failed, Idle, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
