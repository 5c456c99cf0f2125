package application

import (
	"context"
	"sync"
	"time"
)

// DefaultApprovalTTL bounds how long a pending request may wait for a human
// decision. The originating tab may close and never resolve it; the TTL
// guarantees the entry terminates with a timeout failure instead of leaking.
const DefaultApprovalTTL = 2 * time.Minute

type requestKey struct {
	origin  string
	session string
}

type permissionDecision struct {
	approved bool
	err      error
}

// PendingRequest is the single-use completion handle of an outstanding
// approval request. It fires exactly once: whichever of approval, denial,
// failure or expiry happens first wins and the rest are ignored.
type PendingRequest struct {
	origin  string
	session string

	once     sync.Once
	done     chan struct{}
	decision permissionDecision
	timer    *time.Timer
}

func (r *PendingRequest) complete(approved bool, err error) bool {
	fired := false
	r.once.Do(func() {
		r.decision = permissionDecision{approved, err}
		close(r.done)
		fired = true
	})
	return fired
}

// Wait suspends the caller until the request is decided or the context is
// cancelled.
func (r *PendingRequest) Wait(ctx context.Context) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-r.done:
		return r.decision.approved, r.decision.err
	}
}

// PendingRequestTable is the process-wide map of outstanding approval
// requests, keyed by (origin, session) so two tabs on the same origin get
// independent prompts. It starts empty and owns every entry from creation
// until its handle fires.
type PendingRequestTable struct {
	mtx      sync.Mutex
	requests map[requestKey]*PendingRequest
	ttl      time.Duration
}

// NewPendingRequestTable returns an empty table whose entries expire after
// the given ttl, or DefaultApprovalTTL when non-positive.
func NewPendingRequestTable(ttl time.Duration) *PendingRequestTable {
	if ttl <= 0 {
		ttl = DefaultApprovalTTL
	}
	return &PendingRequestTable{
		requests: map[requestKey]*PendingRequest{},
		ttl:      ttl,
	}
}

// JoinOrCreate returns the pending request of the given key, creating it if
// absent. A second caller for the same key joins the existing entry instead
// of creating a duplicate, so a single prompt serves all of them.
func (t *PendingRequestTable) JoinOrCreate(origin, session string) (*PendingRequest, bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	key := requestKey{origin, session}
	if req, ok := t.requests[key]; ok {
		return req, false
	}

	req := &PendingRequest{
		origin:  origin,
		session: session,
		done:    make(chan struct{}),
	}
	req.timer = time.AfterFunc(t.ttl, func() {
		t.Fail(origin, session, ErrApprovalTimeout)
	})
	t.requests[key] = req
	return req, true
}

// Resolve fires the pending request of the given key with a decision and
// removes it. Resolving a missing key is a no-op, so late or duplicate
// resolutions are ignored rather than treated as errors.
func (t *PendingRequestTable) Resolve(origin, session string, approved bool) bool {
	return t.release(origin, session, approved, nil)
}

// Fail fires the pending request of the given key with a failure and removes
// it.
func (t *PendingRequestTable) Fail(origin, session string, err error) bool {
	return t.release(origin, session, false, err)
}

// Len reports the number of outstanding entries.
func (t *PendingRequestTable) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.requests)
}

func (t *PendingRequestTable) release(origin, session string, approved bool, err error) bool {
	t.mtx.Lock()
	key := requestKey{origin, session}
	req, ok := t.requests[key]
	if ok {
		delete(t.requests, key)
	}
	t.mtx.Unlock()

	if !ok {
		return false
	}
	req.timer.Stop()
	return req.complete(approved, err)
}
