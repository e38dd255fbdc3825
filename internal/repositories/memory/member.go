package memory

import (
	"context"
	"sort"
	"sync"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
)

// DefaultPageSize is the scan page size when none is configured
const DefaultPageSize = 100

// MemberStore is an in-memory implementation of repositories.MemberStore.
// Scans walk records in email order so pagination is deterministic.
type MemberStore struct {
	mu       sync.RWMutex
	members  map[string]models.Member
	pageSize int
}

// NewMemberStore creates a new in-memory member store
func NewMemberStore(pageSize int) *MemberStore {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &MemberStore{
		members:  make(map[string]models.Member),
		pageSize: pageSize,
	}
}

// Get fetches a member by email
func (s *MemberStore) Get(ctx context.Context, email string) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.AsStoreError("Get", err)
	}
	if err := repositories.ValidateEmailKey("Get", email); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.members[email].Clone(), nil
}

// Put inserts a member if no record with its email exists
func (s *MemberStore) Put(ctx context.Context, member models.Member) error {
	if err := ctx.Err(); err != nil {
		return repositories.AsStoreError("Put", err)
	}

	email, err := repositories.ValidateKey("Put", member)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.members[email]; exists {
		return repositories.NewConditionalCheckError("Put")
	}
	s.members[email] = member.Clone()
	return nil
}

// Update sets one attribute on an existing member
func (s *MemberStore) Update(ctx context.Context, email, attribute string, value interface{}) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.AsStoreError("Update", err)
	}
	if err := repositories.ValidateEmailKey("Update", email); err != nil {
		return nil, err
	}
	if err := repositories.ValidateUpdateAttribute("Update", attribute); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	member, exists := s.members[email]
	if !exists {
		return nil, repositories.NewConditionalCheckError("Update")
	}
	member[attribute] = value

	return models.Member{attribute: value}, nil
}

// Delete removes a member and returns the prior record
func (s *MemberStore) Delete(ctx context.Context, email string) (models.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.AsStoreError("Delete", err)
	}
	if err := repositories.ValidateEmailKey("Delete", email); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.members[email]
	if !exists {
		return nil, nil
	}
	delete(s.members, email)
	return old, nil
}

// ScanPage returns up to pageSize members with an email after the token's
func (s *MemberStore) ScanPage(ctx context.Context, token repositories.PageToken) (*repositories.ScanPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, repositories.AsStoreError("Scan", err)
	}

	var after string
	if token != nil {
		after, _ = token[models.AttrEmail].(string)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.members))
	for email := range s.members {
		if token == nil || email > after {
			keys = append(keys, email)
		}
	}
	sort.Strings(keys)

	page := &repositories.ScanPage{Items: []models.Member{}}
	for i, email := range keys {
		if i == s.pageSize {
			page.Next = repositories.PageToken{models.AttrEmail: keys[i-1]}
			break
		}
		page.Items = append(page.Items, s.members[email].Clone())
	}

	return page, nil
}

// Len returns the number of stored members
func (s *MemberStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Close implements repositories.MemberStore
func (s *MemberStore) Close() error {
	return nil
}
