package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
)

// MemberStore implements repositories.MemberStore on a local SQLite table.
// Each record is stored as a JSON document keyed by email.
type MemberStore struct {
	db       *sql.DB
	pageSize int
	logger   *logrus.Logger
}

// NewMemberStore creates a new SQLite member store
func NewMemberStore(db *sql.DB, pageSize int, logger *logrus.Logger) *MemberStore {
	if logger == nil {
		logger = logrus.New()
	}
	if pageSize < 1 {
		pageSize = 100
	}
	return &MemberStore{
		db:       db,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Get fetches a member by email
func (s *MemberStore) Get(ctx context.Context, email string) (models.Member, error) {
	if err := repositories.ValidateEmailKey("Get", email); err != nil {
		return nil, err
	}
	member, err := s.load(ctx, s.db, email)
	if err != nil {
		return nil, s.storeError("Get", err)
	}
	return member, nil
}

// Put inserts a member if no record with its email exists
func (s *MemberStore) Put(ctx context.Context, member models.Member) error {
	email, err := repositories.ValidateKey("Put", member)
	if err != nil {
		return err
	}

	document, err := json.Marshal(member)
	if err != nil {
		return repositories.NewStoreError("Put", http.StatusBadRequest, repositories.CodeValidation,
			fmt.Errorf("failed to marshal member: %w", err))
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO members (email, document) VALUES (?, ?) ON CONFLICT(email) DO NOTHING`,
		email, string(document))
	if err != nil {
		return s.storeError("Put", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return s.storeError("Put", err)
	}
	if rows == 0 {
		return repositories.NewConditionalCheckError("Put")
	}

	return nil
}

// Update sets one attribute on an existing member
func (s *MemberStore) Update(ctx context.Context, email, attribute string, value interface{}) (models.Member, error) {
	if err := repositories.ValidateEmailKey("Update", email); err != nil {
		return nil, err
	}
	if err := repositories.ValidateUpdateAttribute("Update", attribute); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		member, err := s.load(ctx, tx, email)
		if err != nil {
			return err
		}
		if member == nil {
			return repositories.NewConditionalCheckError("Update")
		}

		member[attribute] = value
		document, err := json.Marshal(member)
		if err != nil {
			return repositories.NewStoreError("Update", http.StatusBadRequest, repositories.CodeValidation,
				fmt.Errorf("failed to marshal member: %w", err))
		}

		_, err = tx.ExecContext(ctx, `UPDATE members SET document = ? WHERE email = ?`, string(document), email)
		return err
	})
	if err != nil {
		return nil, s.storeError("Update", err)
	}

	return models.Member{attribute: value}, nil
}

// Delete removes a member and returns the prior record
func (s *MemberStore) Delete(ctx context.Context, email string) (models.Member, error) {
	if err := repositories.ValidateEmailKey("Delete", email); err != nil {
		return nil, err
	}
	var old models.Member
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		member, err := s.load(ctx, tx, email)
		if err != nil || member == nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM members WHERE email = ?`, email); err != nil {
			return err
		}
		old = member
		return nil
	})
	if err != nil {
		return nil, s.storeError("Delete", err)
	}

	return old, nil
}

// ScanPage returns up to pageSize members ordered by email, after the token's email
func (s *MemberStore) ScanPage(ctx context.Context, token repositories.PageToken) (*repositories.ScanPage, error) {
	var after string
	if token != nil {
		after, _ = token[models.AttrEmail].(string)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT email, document FROM members WHERE email > ? ORDER BY email LIMIT ?`,
		after, s.pageSize+1)
	if err != nil {
		return nil, s.storeError("Scan", err)
	}
	defer rows.Close()

	page := &repositories.ScanPage{Items: []models.Member{}}
	var lastEmail string
	for rows.Next() {
		var email, document string
		if err := rows.Scan(&email, &document); err != nil {
			return nil, s.storeError("Scan", err)
		}

		if len(page.Items) == s.pageSize {
			page.Next = repositories.PageToken{models.AttrEmail: lastEmail}
			break
		}

		member, err := decode(document)
		if err != nil {
			return nil, s.storeError("Scan", err)
		}
		page.Items = append(page.Items, member)
		lastEmail = email
	}
	if err := rows.Err(); err != nil {
		return nil, s.storeError("Scan", err)
	}

	return page, nil
}

// Close is a no-op; the connection is owned by the database.ConnectionManager
func (s *MemberStore) Close() error {
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *MemberStore) load(ctx context.Context, q queryer, email string) (models.Member, error) {
	var document string
	err := q.QueryRowContext(ctx, `SELECT document FROM members WHERE email = ?`, email).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(document)
}

func (s *MemberStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WithError(rbErr).Warn("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func decode(document string) (models.Member, error) {
	var member models.Member
	if err := json.Unmarshal([]byte(document), &member); err != nil {
		return nil, fmt.Errorf("failed to decode member document: %w", err)
	}
	return member, nil
}

func (s *MemberStore) storeError(op string, err error) error {
	storeErr := repositories.AsStoreError(op, err)
	if storeErr.StatusCode >= http.StatusInternalServerError {
		s.logger.WithFields(logrus.Fields{
			"op":   op,
			"code": storeErr.Code,
		}).WithError(err).Error("SQLite member store call failed")
	}
	return storeErr
}
