package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
	"member-info-api/pkg/lambda"
)

// Operation names and outcomes reported in write responses
const (
	OperationSave   = "SAVE"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"

	MessageSuccess = "SUCCESS"
	MessageError   = "ERROR"
)

// Error messages rendered in write responses
const (
	ErrInvalidEmailFormat = "Invalid Email Format"
	ErrInvalidRequestBody = "Invalid Request Body"
	ErrMemberExists       = "Member already exists"
	ErrMemberNotExists    = "Member does not exist"
	NotFoundBody          = "404 Not Found"
)

// OperationResponse is the envelope for save, update and delete
type OperationResponse struct {
	Operation string      `json:"Operation"`
	Message   string      `json:"Message"`
	Item      interface{} `json:"Item,omitempty"`
	Update    interface{} `json:"Update,omitempty"`
	Error     string      `json:"Error,omitempty"`
}

// StoreOutput mirrors a store write response: the attributes it returned, if any
type StoreOutput struct {
	Attributes models.Member `json:"Attributes,omitempty"`
}

// MemberResponse is the body of a get
type MemberResponse struct {
	Member models.Member `json:"member,omitempty"`
}

// MembersResponse is the body of a list
type MembersResponse struct {
	Members []models.Member `json:"members"`
}

// StoreErrorResponse is the body of a failed get or list
type StoreErrorResponse struct {
	ErrorCode int    `json:"errorCode"`
	Error     string `json:"error"`
}

// jsonResponse builds a response with a JSON-encoded body
func jsonResponse(status int, body interface{}) (*lambda.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response body: %w", err)
	}

	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       data,
	}, nil
}

// notFound is the response for any unrouted request
func notFound() (*lambda.Response, error) {
	return jsonResponse(http.StatusNotFound, NotFoundBody)
}

// storeFailure returns the status and code a store error reports
func storeFailure(op string, err error) (int, string) {
	storeErr := repositories.AsStoreError(op, err)
	status := storeErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, storeErr.Code
}

// storeErrorResponse renders a read failure
func storeErrorResponse(op string, err error) (*lambda.Response, error) {
	status, code := storeFailure(op, err)
	return jsonResponse(status, StoreErrorResponse{ErrorCode: status, Error: code})
}

// operationError renders a write failure. A failed precondition gets the
// operation's explanation appended to the store's code.
func operationError(operation string, err error, conditionMessage string) (*lambda.Response, error) {
	status, code := storeFailure(operation, err)
	message := code
	if repositories.IsConditionalCheckFailed(err) && conditionMessage != "" {
		message = code + ": " + conditionMessage
	}

	return jsonResponse(status, OperationResponse{
		Operation: operation,
		Message:   MessageError,
		Error:     message,
	})
}
