package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	id "impactledger/pkg/domain"
	dErrors "impactledger/pkg/domain-errors"
)

// Text limits carried over from the deployed contract's string types.
const (
	MaxNameLength           = 100
	MaxSpecializationLength = 100
	MaxTitleLength          = 100
	MaxDescriptionLength    = 500
)

// Delegate is a registered subject-matter representative.
//
// Invariants:
//   - ID is allocated by the store, sequentially from 1
//   - Name and Specialization are non-empty and never change
//   - TotalImpact equals the sum of ImpactScore over the delegate's credentials
//     and only changes through ApplyImpact inside an issuance transaction
type Delegate struct {
	ID             id.DelegateID `json:"id"`
	Name           string        `json:"name"`
	Specialization string        `json:"specialization"`
	TotalImpact    uint64        `json:"total_impact"`
	RegisteredBy   id.AccountID  `json:"registered_by"`
	RegisteredAt   time.Time     `json:"registered_at"`
}

// NewDelegate validates input and builds an unsaved delegate with zero impact.
func NewDelegate(name, specialization string, registeredBy id.AccountID, now time.Time) (*Delegate, error) {
	name = strings.TrimSpace(name)
	specialization = strings.TrimSpace(specialization)
	if err := requireText("name", name, MaxNameLength); err != nil {
		return nil, err
	}
	if err := requireText("specialization", specialization, MaxSpecializationLength); err != nil {
		return nil, err
	}
	return &Delegate{
		Name:           name,
		Specialization: specialization,
		RegisteredBy:   registeredBy,
		RegisteredAt:   now,
	}, nil
}

// CanAddImpact checks that adding score keeps the running total representable.
func (d *Delegate) CanAddImpact(score uint64) error {
	if score > math.MaxUint64-d.TotalImpact {
		return dErrors.New(dErrors.CodeInvariantViolation, "impact score would overflow delegate total")
	}
	return nil
}

// ApplyImpact adds score to the running total. Call CanAddImpact first.
func (d *Delegate) ApplyImpact(score uint64) {
	d.TotalImpact += score
}

// Credential is an immutable record of recognition issued to a delegate.
type Credential struct {
	ID          id.CredentialID `json:"id"`
	DelegateID  id.DelegateID   `json:"delegate_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImpactScore uint64          `json:"impact_score"`
	IssuedBy    id.AccountID    `json:"issued_by"`
	IssuedAt    time.Time       `json:"issued_at"`
}

// NewCredential validates input and builds an unsaved credential. Whether
// delegateID exists is checked by the store inside the issuance transaction.
func NewCredential(delegateID id.DelegateID, title, description string, impactScore uint64, issuedBy id.AccountID, now time.Time) (*Credential, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if err := requireText("title", title, MaxTitleLength); err != nil {
		return nil, err
	}
	if err := requireText("description", description, MaxDescriptionLength); err != nil {
		return nil, err
	}
	return &Credential{
		DelegateID:  delegateID,
		Title:       title,
		Description: description,
		ImpactScore: impactScore,
		IssuedBy:    issuedBy,
		IssuedAt:    now,
	}, nil
}

func requireText(field, value string, max int) error {
	if value == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, field+" is required")
	}
	if !utf8.ValidString(value) {
		return dErrors.New(dErrors.CodeInvariantViolation, field+" must be valid UTF-8")
	}
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeInvariantViolation, field+" is too long")
	}
	return nil
}
