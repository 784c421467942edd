package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/catalogsync/internal/domain"
)

func TestRetryPolicy_AlwaysTimingOutMakesTwoAttempts(t *testing.T) {
	remote := newFakeCatalog(100, "Women")
	for call := 1; call <= 5; call++ {
		remote.failCalls[call] = transientErr()
	}

	policy := NewRetryPolicy(NewPageFetcher(remote), clock.New(), time.Millisecond)

	_, err := policy.Fetch(context.Background(), womenFilters(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransientUnavailable)
	assert.Equal(t, 2, remote.callCount())
}

func TestRetryPolicy_DegradedSuccess(t *testing.T) {
	remote := newFakeCatalog(100, "Women")
	remote.failCalls[1] = transientErr()

	policy := NewRetryPolicy(NewPageFetcher(remote), clock.New(), time.Millisecond)

	page, err := policy.Fetch(context.Background(), womenFilters(1))
	require.NoError(t, err)

	assert.True(t, page.Degraded)
	assert.Len(t, page.Items, 12)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.PageSize)
	assert.Equal(t, 100, page.TotalCount)
	assert.Equal(t, 5, page.TotalPages) // against the original 24 per page

	requests := remote.requests()
	require.Len(t, requests, 2)
	assert.Equal(t, 24, requests[0].PageSize)
	assert.Equal(t, 12, requests[1].PageSize)
	assert.Equal(t, "Women", requests[1].Gender)
}

func TestRetryPolicy_DegradedPageStaysInsideWindow(t *testing.T) {
	remote := newFakeCatalog(100, "Women")
	remote.failCalls[1] = transientErr()

	policy := NewRetryPolicy(NewPageFetcher(remote), clock.New(), 0)

	page, err := policy.Fetch(context.Background(), womenFilters(3))
	require.NoError(t, err)

	full, err := NewPageFetcher(remote).Fetch(context.Background(), womenFilters(3))
	require.NoError(t, err)

	assert.Equal(t, full.IDs()[:len(page.Items)], page.IDs())
}

func TestRetryPolicy_RecognizesTimeoutSignals(t *testing.T) {
	signals := []error{
		&domain.Error{Code: domain.CodeFailure, Status: 503},
		&domain.Error{Code: domain.CodeFailure, Status: 504},
		errors.New("upstream request timeout"),
		errors.New("Service Unavailable"),
		context.DeadlineExceeded,
	}

	for _, signal := range signals {
		t.Run(signal.Error(), func(t *testing.T) {
			remote := newFakeCatalog(30, "Women")
			remote.failCalls[1] = signal

			_, err := NewRetryPolicy(NewPageFetcher(remote), clock.New(), 0).Fetch(context.Background(), womenFilters(1))
			require.NoError(t, err)
			assert.Equal(t, 2, remote.callCount())
		})
	}
}

func TestRetryPolicy_OtherErrorsAreNotRetried(t *testing.T) {
	remote := newFakeCatalog(30, "Women")
	remote.failCalls[1] = &domain.Error{Code: domain.CodeFailure, Message: "bad filter", Status: 400}

	_, err := NewRetryPolicy(NewPageFetcher(remote), clock.New(), 0).Fetch(context.Background(), womenFilters(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFailure)
	assert.Equal(t, 1, remote.callCount())
}

func TestRetryPolicy_CancelledDuringDelay(t *testing.T) {
	remote := newFakeCatalog(30, "Women")
	remote.failCalls[1] = transientErr()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRetryPolicy(NewPageFetcher(remote), clock.New(), time.Hour).Fetch(ctx, womenFilters(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, remote.callCount())
}

func TestReducedRequest(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		size     int
		wantPage int
		wantSize int
	}{
		{name: "first page halves", page: 1, size: 24, wantPage: 1, wantSize: 12},
		{name: "later page keeps window start", page: 3, size: 24, wantPage: 5, wantSize: 12},
		{name: "odd size on first page", page: 1, size: 25, wantPage: 1, wantSize: 12},
		{name: "odd size on later page uses divisor", page: 2, size: 25, wantPage: 6, wantSize: 5},
		{name: "prime size on later page", page: 2, size: 7, wantPage: 8, wantSize: 1},
		{name: "single item page", page: 4, size: 1, wantPage: 4, wantSize: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReducedRequest(domain.FilterState{Page: tt.page, PageSize: tt.size})
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantSize, got.PageSize)
			if tt.size > 1 {
				assert.LessOrEqual(t, got.PageSize, tt.size/2)
				assert.Equal(t, (tt.page-1)*tt.size, (got.Page-1)*got.PageSize)
			}
		})
	}
}
