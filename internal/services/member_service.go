package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
)

// memberService implements the MemberService interface
type memberService struct {
	store     repositories.MemberStore
	validator *validator.Validate
	logger    *logrus.Logger
}

// NewMemberService creates a new member service instance
func NewMemberService(store repositories.MemberStore, logger *logrus.Logger) MemberService {
	if logger == nil {
		logger = logrus.New()
	}
	return &memberService{
		store:     store,
		validator: models.NewValidator(),
		logger:    logger,
	}
}

// ListMembers scans the whole table page by page
func (s *memberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	members := []models.Member{}
	var token repositories.PageToken
	pages := 0

	for {
		page, err := s.store.ScanPage(ctx, token)
		if err != nil {
			return nil, err
		}
		pages++

		members = append(members, page.Items...)
		if page.Next == nil {
			break
		}
		token = page.Next
	}

	s.logger.WithFields(logrus.Fields{
		"members": len(members),
		"pages":   pages,
	}).Debug("Listed members")

	return members, nil
}

// GetMember retrieves a member by email
func (s *memberService) GetMember(ctx context.Context, email string) (models.Member, error) {
	return s.store.Get(ctx, email)
}

// SaveMember validates the email and inserts the member
func (s *memberService) SaveMember(ctx context.Context, member models.Member) error {
	if err := models.ValidateMember(s.validator, member); err != nil {
		return err
	}

	if err := s.store.Put(ctx, member); err != nil {
		return err
	}

	email, _ := member.Email()
	s.logger.WithField("email", email).Info("Member saved")
	return nil
}

// UpdateMember changes one attribute of an existing member
func (s *memberService) UpdateMember(ctx context.Context, req *models.UpdateRequest) (models.Member, error) {
	attributes, err := s.store.Update(ctx, req.Email, req.ColName, req.NewValue)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"email":     req.Email,
		"attribute": req.ColName,
	}).Info("Member updated")
	return attributes, nil
}

// DeleteMember removes a member by email
func (s *memberService) DeleteMember(ctx context.Context, email string) (models.Member, error) {
	old, err := s.store.Delete(ctx, email)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"email":   email,
		"existed": old != nil,
	}).Info("Member deleted")
	return old, nil
}
