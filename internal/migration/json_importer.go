package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
	"member-info-api/internal/services"
)

// JSONImporter loads member records from a JSON export into the store,
// one conditional insert at a time.
type JSONImporter struct {
	memberService services.MemberService
	validator     *validator.Validate
	logger        *logrus.Logger
}

// NewJSONImporter creates a new JSON importer
func NewJSONImporter(memberService services.MemberService, logger *logrus.Logger) *JSONImporter {
	if logger == nil {
		logger = logrus.New()
	}
	return &JSONImporter{
		memberService: memberService,
		validator:     models.NewValidator(),
		logger:        logger,
	}
}

// ImportResult contains the results of an import
type ImportResult struct {
	Processed int
	Imported  int
	Skipped   int // already present in the store
	Errors    []string
}

// ReadFile parses a JSON array of member records
func ReadFile(path string) ([]models.Member, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var members []models.Member
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return members, nil
}

// Validate checks every record without writing anything
func (i *JSONImporter) Validate(members []models.Member) *ImportResult {
	result := &ImportResult{Errors: make([]string, 0)}
	for idx, member := range members {
		result.Processed++
		if err := models.ValidateMember(i.validator, member); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", idx, err))
		}
	}
	return result
}

// Import saves each record. Records whose email already exists are skipped;
// any other store failure stops the import.
func (i *JSONImporter) Import(ctx context.Context, members []models.Member) (*ImportResult, error) {
	result := &ImportResult{Errors: make([]string, 0)}

	for idx, member := range members {
		result.Processed++
		email, _ := member.Email()

		err := i.memberService.SaveMember(ctx, member)
		switch {
		case err == nil:
			result.Imported++
		case errors.Is(err, models.ErrInvalidEmail):
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", idx, err))
		case repositories.IsConditionalCheckFailed(err):
			result.Skipped++
			i.logger.WithField("email", email).Debug("Member already exists, skipping")
		default:
			return result, fmt.Errorf("failed to import record %d (%s): %w", idx, email, err)
		}
	}

	i.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"imported":  result.Imported,
		"skipped":   result.Skipped,
		"errors":    len(result.Errors),
	}).Info("Member import finished")

	return result, nil
}
