package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"member-info-api/internal/models"
	"member-info-api/internal/repositories"
	"member-info-api/internal/repositories/memory"
	"member-info-api/internal/services"
	"member-info-api/pkg/lambda"
)

// failingStore fails every call with the configured error
type failingStore struct {
	err   error
	calls int
}

func (f *failingStore) Get(context.Context, string) (models.Member, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Put(context.Context, models.Member) error {
	f.calls++
	return f.err
}

func (f *failingStore) Update(context.Context, string, string, interface{}) (models.Member, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Delete(context.Context, string) (models.Member, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) ScanPage(context.Context, repositories.PageToken) (*repositories.ScanPage, error) {
	f.calls++
	return nil, f.err
}

func (f *failingStore) Close() error { return nil }

func newTestRouter(store repositories.MemberStore) *Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := services.NewMemberService(store, logger)
	return NewRouter(NewMemberHandler(svc, logger), logger)
}

func call(t *testing.T, router *Router, method, path string, query map[string]string, body string) (*lambda.Response, map[string]interface{}) {
	t.Helper()

	resp, err := router.Handle(context.Background(), &lambda.Request{
		Method:      method,
		Path:        path,
		QueryParams: query,
		Body:        []byte(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var decoded map[string]interface{}
	if len(resp.Body) > 0 && resp.Body[0] == '{' {
		require.NoError(t, json.Unmarshal(resp.Body, &decoded))
	}
	return resp, decoded
}

func TestMemberLifecycle(t *testing.T) {
	router := newTestRouter(memory.NewMemberStore(0))
	email := map[string]string{"email": "a@b.com"}

	resp, body := call(t, router, http.MethodPost, PathMember, nil,
		`{"email":"a@b.com","firstName":"A","lastName":"B","middleInitial":"D"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, OperationSave, body["Operation"])
	assert.Equal(t, MessageSuccess, body["Message"])
	assert.Equal(t, map[string]interface{}{
		"email":         "a@b.com",
		"firstName":     "A",
		"lastName":      "B",
		"middleInitial": "D",
	}, body["Item"])

	resp, body = call(t, router, http.MethodGet, PathMember, email, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	member := body["member"].(map[string]interface{})
	assert.Equal(t, "D", member["middleInitial"])

	resp, body = call(t, router, http.MethodPut, PathMember, nil,
		`{"email":"a@b.com","colName":"middleInitial","newValue":"X"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, OperationUpdate, body["Operation"])
	assert.Equal(t, map[string]interface{}{
		"Attributes": map[string]interface{}{"middleInitial": "X"},
	}, body["Update"])

	_, body = call(t, router, http.MethodGet, PathMember, email, "")
	assert.Equal(t, "X", body["member"].(map[string]interface{})["middleInitial"])

	resp, body = call(t, router, http.MethodDelete, PathMember, email, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, OperationDelete, body["Operation"])
	deleted := body["Item"].(map[string]interface{})["Attributes"].(map[string]interface{})
	assert.Equal(t, "X", deleted["middleInitial"])

	resp, body = call(t, router, http.MethodGet, PathMember, email, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.JSONEq(t, `{}`, string(resp.Body))
}

func TestListMembers(t *testing.T) {
	store := memory.NewMemberStore(2)
	router := newTestRouter(store)

	resp, _ := call(t, router, http.MethodGet, PathMembers, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"members": []}`, string(resp.Body))

	for _, email := range []string{"c@x.com", "a@x.com", "e@x.com", "b@x.com", "d@x.com"} {
		require.NoError(t, store.Put(context.Background(), models.Member{"email": email}))
	}

	resp, body := call(t, router, http.MethodGet, PathMembers, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	members := body["members"].([]interface{})
	require.Len(t, members, 5, "all pages are returned")
	for i, want := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com", "e@x.com"} {
		assert.Equal(t, want, members[i].(map[string]interface{})["email"])
	}
}

func TestCreateMember_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "invalid email",
			body:       `{"email":"bademail-com","firstName":"A"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  ErrInvalidEmailFormat,
		},
		{
			name:       "missing email",
			body:       `{"firstName":"A"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  ErrInvalidEmailFormat,
		},
		{
			name:       "malformed body",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantError:  ErrInvalidRequestBody,
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantError:  ErrInvalidRequestBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewMemberStore(0)
			router := newTestRouter(store)

			resp, body := call(t, router, http.MethodPost, PathMember, nil, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, OperationSave, body["Operation"])
			assert.Equal(t, MessageError, body["Message"])
			assert.Equal(t, tt.wantError, body["Error"])
			assert.Equal(t, 0, store.Len(), "the store must not be written")
		})
	}
}

func TestCreateMember_Duplicate(t *testing.T) {
	router := newTestRouter(memory.NewMemberStore(0))

	resp, _ := call(t, router, http.MethodPost, PathMember, nil, `{"email":"a@b.com","firstName":"A"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := call(t, router, http.MethodPost, PathMember, nil, `{"email":"a@b.com","firstName":"Other"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ConditionalCheckFailedException: Member already exists", body["Error"])

	_, body = call(t, router, http.MethodGet, PathMember, map[string]string{"email": "a@b.com"}, "")
	assert.Equal(t, "A", body["member"].(map[string]interface{})["firstName"])
}

func TestCreateMember_StringEncodedBody(t *testing.T) {
	router := newTestRouter(memory.NewMemberStore(0))

	resp, body := call(t, router, http.MethodPost, PathMember, nil, `"{\"email\":\"a@b.com\"}"`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"email": "a@b.com"}, body["Item"])
}

func TestUpdateMember_Errors(t *testing.T) {
	router := newTestRouter(memory.NewMemberStore(0))

	resp, body := call(t, router, http.MethodPut, PathMember, nil,
		`{"email":"nobody@b.com","colName":"middleInitial","newValue":"X"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, OperationUpdate, body["Operation"])
	assert.Equal(t, MessageError, body["Message"])
	assert.Equal(t, "ConditionalCheckFailedException: Member does not exist", body["Error"])

	resp, body = call(t, router, http.MethodPut, PathMember, nil, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, ErrInvalidRequestBody, body["Error"])

	resp, _ = call(t, router, http.MethodGet, PathMember, map[string]string{"email": "nobody@b.com"}, "")
	assert.JSONEq(t, `{}`, string(resp.Body), "a failed update must not create a record")
}

func TestDeleteMissingMember(t *testing.T) {
	router := newTestRouter(memory.NewMemberStore(0))

	resp, _ := call(t, router, http.MethodDelete, PathMember, map[string]string{"email": "nobody@b.com"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Operation":"DELETE","Message":"SUCCESS","Item":{}}`, string(resp.Body))
}

func TestMissingEmailKey(t *testing.T) {
	router := newTestRouter(memory.NewMemberStore(0))

	tests := []struct {
		name     string
		method   string
		query    map[string]string
		body     string
		wantBody string
	}{
		{
			name:     "get without query parameters",
			method:   http.MethodGet,
			wantBody: `{"errorCode":400,"error":"ValidationException"}`,
		},
		{
			name:     "get with empty email",
			method:   http.MethodGet,
			query:    map[string]string{"email": ""},
			wantBody: `{"errorCode":400,"error":"ValidationException"}`,
		},
		{
			name:     "update without email",
			method:   http.MethodPut,
			body:     `{"colName":"middleInitial","newValue":"X"}`,
			wantBody: `{"Operation":"UPDATE","Message":"ERROR","Error":"ValidationException"}`,
		},
		{
			name:     "delete without email",
			method:   http.MethodDelete,
			wantBody: `{"Operation":"DELETE","Message":"ERROR","Error":"ValidationException"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := call(t, router, tt.method, PathMember, tt.query, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(resp.Body))
		})
	}
}

func TestStoreFailuresPassThrough(t *testing.T) {
	throttled := repositories.NewStoreError("Scan", http.StatusBadRequest,
		"ProvisionedThroughputExceededException", errors.New("rate exceeded"))
	unavailable := repositories.NewStoreError("Get", http.StatusServiceUnavailable,
		"ServiceUnavailable", errors.New("try again"))

	tests := []struct {
		name     string
		err      error
		method   string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{
			name:     "list",
			err:      throttled,
			method:   http.MethodGet,
			path:     PathMembers,
			wantCode: http.StatusBadRequest,
			wantBody: `{"errorCode":400,"error":"ProvisionedThroughputExceededException"}`,
		},
		{
			name:     "get",
			err:      unavailable,
			method:   http.MethodGet,
			path:     PathMember,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"errorCode":503,"error":"ServiceUnavailable"}`,
		},
		{
			name:     "create",
			err:      unavailable,
			method:   http.MethodPost,
			path:     PathMember,
			body:     `{"email":"a@b.com"}`,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"Operation":"SAVE","Message":"ERROR","Error":"ServiceUnavailable"}`,
		},
		{
			name:     "update",
			err:      throttled,
			method:   http.MethodPut,
			path:     PathMember,
			body:     `{"email":"a@b.com","colName":"firstName","newValue":"Z"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"Operation":"UPDATE","Message":"ERROR","Error":"ProvisionedThroughputExceededException"}`,
		},
		{
			name:     "delete",
			err:      unavailable,
			method:   http.MethodDelete,
			path:     PathMember,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"Operation":"DELETE","Message":"ERROR","Error":"ServiceUnavailable"}`,
		},
		{
			name:     "error without a status",
			err:      errors.New("connection reset"),
			method:   http.MethodGet,
			path:     PathMembers,
			wantCode: http.StatusInternalServerError,
			wantBody: `{"errorCode":500,"error":"InternalServerError"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &failingStore{err: tt.err}
			router := newTestRouter(store)

			resp, _ := call(t, router, tt.method, tt.path, map[string]string{"email": "a@b.com"}, tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(resp.Body))
			assert.Equal(t, 1, store.calls, "store failures are not retried")
		})
	}
}
