package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diagnote/internal/domain"
)

// EventEmitter lets the server notify a frontend running in the same
// process.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// ApprovalStore persists pending actions for the app, which runs in
// another process. storage.ApprovalStore implements it.
type ApprovalStore interface {
	Insert(a domain.Approval) error
	Status(id string) (string, error)
	Delete(id string) error
}

// errNoApprovals is returned when destructive tools run without a store to
// ask through.
var errNoApprovals = errors.New("no approval store configured")

// ApprovalQueue asks the user before destructive MCP tool calls run. The
// request is written to mcp_approvals, the app's note watcher shows it,
// and the queue polls the row for the user's decision.
type ApprovalQueue struct {
	ctx   context.Context
	store ApprovalStore

	timeout time.Duration
	poll    time.Duration
}

func NewApprovalQueue(ctx context.Context, store ApprovalStore) *ApprovalQueue {
	return &ApprovalQueue{
		ctx:     ctx,
		store:   store,
		timeout: 120 * time.Second,
		poll:    500 * time.Millisecond,
	}
}

// SetTimeout changes how long a request waits for the user.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	q.timeout = d
}

// Request asks for approval and blocks until the user decides, the
// request times out or ctx is done. A rejection is reported as false with
// a nil error. The row is removed once the request ends.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description, metadata string) (bool, error) {
	if q.store == nil {
		return false, errNoApprovals
	}
	if metadata == "" {
		metadata = "{}"
	}
	a := domain.Approval{
		ID:          uuid.NewString(),
		Tool:        tool,
		Description: description,
		Status:      domain.ApprovalPending,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    metadata,
	}
	if err := q.store.Insert(a); err != nil {
		return false, err
	}
	defer q.store.Delete(a.ID)

	deadline := time.NewTimer(q.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			status, err := q.store.Status(a.ID)
			if err != nil {
				continue
			}
			switch status {
			case domain.ApprovalApproved:
				return true, nil
			case domain.ApprovalRejected:
				return false, nil
			}
		case <-deadline.C:
			return false, fmt.Errorf("action timed out after %s: %s", q.timeout, a.Tool)
		case <-ctx.Done():
			return false, ctx.Err()
		case <-q.ctx.Done():
			return false, fmt.Errorf("context cancelled")
		}
	}
}
