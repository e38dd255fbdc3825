package services

import (
	"context"

	"member-info-api/internal/models"
)

// MemberService defines the interface for member operations
type MemberService interface {
	// ListMembers returns every member, following scan pages until the store
	// reports no continuation token. A failure on any page discards the rest.
	ListMembers(ctx context.Context) ([]models.Member, error)

	// GetMember returns the member with the given email, or nil when absent
	GetMember(ctx context.Context, email string) (models.Member, error)

	// SaveMember validates and inserts a new member
	SaveMember(ctx context.Context, member models.Member) error

	// UpdateMember sets a single attribute on an existing member
	UpdateMember(ctx context.Context, req *models.UpdateRequest) (models.Member, error)

	// DeleteMember removes a member and returns the prior record, or nil
	DeleteMember(ctx context.Context, email string) (models.Member, error)
}
