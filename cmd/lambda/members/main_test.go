package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"member-info-api/internal/config"
	"member-info-api/pkg/server"
)

func useMemoryStore(t *testing.T) {
	t.Helper()
	previous := connections
	connections = server.NewConnectionManager(func() (*config.Config, error) {
		return &config.Config{
			Environment: "test",
			LogLevel:    "error",
			Store:       config.StoreConfig{Type: config.StoreMemory, MaxAttempts: 1, PageSize: 2},
		}, nil
	})
	t.Cleanup(func() { connections = previous })
}

func invoke(t *testing.T, method, path string, query map[string]string, body string) (events.APIGatewayProxyResponse, map[string]interface{}) {
	t.Helper()

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "test-request"})
	resp, err := handler(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:            method,
		Path:                  path,
		QueryStringParameters: query,
		Body:                  body,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var decoded map[string]interface{}
	_ = json.Unmarshal([]byte(resp.Body), &decoded)
	return resp, decoded
}

func TestHandler_MemberScenario(t *testing.T) {
	useMemoryStore(t)
	email := map[string]string{"email": "a@b.com"}

	resp, body := invoke(t, http.MethodPost, "/member", nil,
		`{"email":"a@b.com","firstName":"A","lastName":"B","middleInitial":"D"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUCCESS", body["Message"])

	resp, body = invoke(t, http.MethodGet, "/member", email, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "D", body["member"].(map[string]interface{})["middleInitial"])

	resp, body = invoke(t, http.MethodPut, "/member", nil,
		`{"email":"a@b.com","colName":"middleInitial","newValue":"X"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"Attributes": map[string]interface{}{"middleInitial": "X"}}, body["Update"])

	resp, _ = invoke(t, http.MethodDelete, "/member", email, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = invoke(t, http.MethodGet, "/member", email, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{}`, resp.Body)
}

func TestHandler_NotFound(t *testing.T) {
	useMemoryStore(t)

	resp, _ := invoke(t, http.MethodGet, "/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, `"404 Not Found"`, resp.Body)
}

func TestHandler_BadBase64Body(t *testing.T) {
	useMemoryStore(t)

	resp, err := handler(context.Background(), events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/member",
		Body:            "%%%",
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestShutdown_ReleasesContainer(t *testing.T) {
	useMemoryStore(t)

	assert.False(t, connections.IsHealthy(), "cold before the first invocation")

	resp, _ := invoke(t, http.MethodGet, "/members", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, connections.IsHealthy(), "warm after an invocation")

	shutdown()
	assert.False(t, connections.IsHealthy(), "shutdown drops the container")

	resp, _ = invoke(t, http.MethodGet, "/members", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a new container is built after shutdown")
}
