package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "impactledger/pkg/domain"
)

// Action names a ledger event.
type Action string

const (
	ActionDelegateRegistered Action = "delegate_registered"
	ActionCredentialIssued   Action = "credential_issued"
)

// Event is emitted after a ledger mutation commits. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	ID           uuid.UUID       `json:"id"`
	Action       Action          `json:"action"`
	Timestamp    time.Time       `json:"timestamp"`
	ActorID      id.AccountID    `json:"actor_id"`
	DelegateID   id.DelegateID   `json:"delegate_id"`
	CredentialID id.CredentialID `json:"credential_id,omitempty"`
	ImpactScore  uint64          `json:"impact_score,omitempty"`
	RequestID    string          `json:"request_id,omitempty"`
}

// Key partitions events by delegate so one delegate's history stays ordered.
func (e Event) Key() string {
	return e.DelegateID.String()
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
