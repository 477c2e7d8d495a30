package handler

import (
	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
)

type RegisterDelegateRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

type RegisterDelegateResponse struct {
	DelegateID id.DelegateID `json:"delegate_id"`
}

// IssueCredentialRequest uses a pointer score so a missing field is not read as zero.
type IssueCredentialRequest struct {
	DelegateID  id.DelegateID `json:"delegate_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImpactScore *uint64       `json:"impact_score"`
}

type IssueCredentialResponse struct {
	CredentialID id.CredentialID `json:"credential_id"`
}

type TotalImpactResponse struct {
	DelegateID  id.DelegateID `json:"delegate_id"`
	TotalImpact uint64        `json:"total_impact"`
}

type TotalImpactsResponse struct {
	Totals []TotalImpactResponse `json:"totals"`
}

type DelegateListResponse struct {
	Delegates []*models.Delegate `json:"delegates"`
}

type CredentialListResponse struct {
	Credentials []*models.Credential `json:"credentials"`
}
