package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Member attribute names
const (
	AttrEmail         = "email"
	AttrFirstName     = "firstName"
	AttrLastName      = "lastName"
	AttrMiddleInitial = "middleInitial"
)

// ErrInvalidBody is returned when a request body is not a JSON object
var ErrInvalidBody = errors.New("invalid request body")

// Member is a single member record keyed by email. Besides the nominal
// attributes it carries any additional attributes the caller supplied.
type Member map[string]interface{}

// Email returns the record's primary key when it is a string
func (m Member) Email() (string, bool) {
	email, ok := m[AttrEmail].(string)
	return email, ok
}

// Clone returns a shallow copy of the record
func (m Member) Clone() Member {
	if m == nil {
		return nil
	}
	out := make(Member, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UpdateRequest changes a single attribute of an existing member
type UpdateRequest struct {
	Email    string      `json:"email"`
	ColName  string      `json:"colName"`
	NewValue interface{} `json:"newValue"`
}

// DecodeMember decodes a request body into a member record
func DecodeMember(body []byte) (Member, error) {
	var member Member
	if err := decodeBody(body, &member); err != nil {
		return nil, err
	}
	if member == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalidBody)
	}
	return member, nil
}

// DecodeUpdateRequest decodes a request body into an update request
func DecodeUpdateRequest(body []byte) (*UpdateRequest, error) {
	var req UpdateRequest
	if err := decodeBody(body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// decodeBody accepts either a JSON object or a JSON string holding one.
// API Gateway test events frequently deliver the latter.
func decodeBody(body []byte, v interface{}) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidBody)
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}

	if len(body) == 0 || body[0] != '{' {
		return fmt.Errorf("%w: body must be a JSON object", ErrInvalidBody)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}
