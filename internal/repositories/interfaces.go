package repositories

import (
	"context"

	"member-info-api/internal/models"
)

// PageToken is an opaque scan cursor: the key of the last record a page
// returned. A nil token starts a scan; a nil Next ends it.
type PageToken map[string]interface{}

// ScanPage is one page of a full-table scan
type ScanPage struct {
	Items []models.Member
	Next  PageToken
}

// MemberStore is the persistence collaborator for member records.
// Every failure is reported as a *StoreError.
type MemberStore interface {
	// Get fetches a member by email. A missing record returns nil, nil.
	Get(ctx context.Context, email string) (models.Member, error)

	// Put inserts a member, failing with ConditionalCheckFailedException
	// when a record with the same email already exists.
	Put(ctx context.Context, member models.Member) error

	// Update sets a single attribute on an existing member and returns the
	// updated attributes. It fails with ConditionalCheckFailedException when
	// the member does not exist. The attribute name is used verbatim.
	Update(ctx context.Context, email, attribute string, value interface{}) (models.Member, error)

	// Delete removes a member unconditionally and returns the prior record,
	// or nil when there was none.
	Delete(ctx context.Context, email string) (models.Member, error)

	// ScanPage returns the page of members after token
	ScanPage(ctx context.Context, token PageToken) (*ScanPage, error)

	// Close releases any resources held by the store
	Close() error
}
