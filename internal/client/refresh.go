package client

import (
	"context"
	"sync"
)

// refreshResult is what every caller suspended on a refresh cycle receives.
type refreshResult struct {
	accessToken string
	err         error
}

// refreshCoordinator guarantees that at most one token-refresh call is in
// flight at a time. The first 401 starts the refresh; every further 401 that
// arrives while it runs is parked on the waiter queue and woken, in arrival
// order, with the shared outcome once the refresh settles.
type refreshCoordinator struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult

	// perform executes the actual refresh network call and must write the
	// rotated tokens to the credential store before returning, so no waiter
	// can replay with a stale token.
	perform func(ctx context.Context) (string, error)
}

func newRefreshCoordinator(perform func(ctx context.Context) (string, error)) *refreshCoordinator {
	return &refreshCoordinator{perform: perform}
}

// Refresh returns the access token minted by the single in-flight refresh,
// starting one if none is running.
func (rc *refreshCoordinator) Refresh(ctx context.Context) (string, error) {
	rc.mu.Lock()
	if rc.refreshing {
		waiter := make(chan refreshResult, 1)
		rc.waiters = append(rc.waiters, waiter)
		rc.mu.Unlock()
		select {
		case res := <-waiter:
			return res.accessToken, res.err
		case <-ctx.Done():
			// The buffered channel lets the drain complete even though this
			// caller gave up; its queue slot is never left blocking.
			return "", ctx.Err()
		}
	}
	rc.refreshing = true
	rc.mu.Unlock()

	token, err := rc.perform(ctx)

	rc.mu.Lock()
	rc.refreshing = false
	waiters := rc.waiters
	rc.waiters = nil
	rc.mu.Unlock()

	res := refreshResult{accessToken: token, err: err}
	for _, waiter := range waiters {
		waiter <- res
	}
	return token, err
}
