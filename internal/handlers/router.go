package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"member-info-api/pkg/lambda"
)

// Route paths
const (
	PathMembers = "/members"
	PathMember  = "/member"
)

type route struct {
	method string
	path   string
}

// Router dispatches requests on an exact (method, path) match.
// There is no prefix matching, no path parameters and no trailing-slash folding.
type Router struct {
	routes map[route]lambda.HandlerFunc
	logger *logrus.Logger
}

// NewRouter builds the member API dispatch table
func NewRouter(memberHandler *MemberHandler, logger *logrus.Logger) *Router {
	if logger == nil {
		logger = logrus.New()
	}
	return &Router{
		routes: map[route]lambda.HandlerFunc{
			{http.MethodGet, PathMembers}:   memberHandler.HandleList,
			{http.MethodGet, PathMember}:    memberHandler.HandleGet,
			{http.MethodPost, PathMember}:   memberHandler.HandleCreate,
			{http.MethodPut, PathMember}:    memberHandler.HandleUpdate,
			{http.MethodDelete, PathMember}: memberHandler.HandleDelete,
		},
		logger: logger,
	}
}

// Handle routes the request to its handler, or answers 404
func (r *Router) Handle(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	start := time.Now()

	handler, ok := r.routes[route{req.Method, req.Path}]
	if !ok {
		handler = func(context.Context, *lambda.Request) (*lambda.Response, error) {
			return notFound()
		}
	}

	resp, err := handler(ctx, req)

	fields := logrus.Fields{
		"request_id": req.RequestID,
		"method":     req.Method,
		"path":       req.Path,
		"latency_ms": float64(time.Since(start).Nanoseconds()) / 1000000,
	}
	switch {
	case err != nil:
		r.logger.WithFields(fields).WithError(err).Error("Request failed")
	case resp.StatusCode >= 500:
		fields["status_code"] = resp.StatusCode
		r.logger.WithFields(fields).Error("Server error")
	case resp.StatusCode >= 400:
		fields["status_code"] = resp.StatusCode
		r.logger.WithFields(fields).Warn("Client error")
	default:
		fields["status_code"] = resp.StatusCode
		r.logger.WithFields(fields).Info("Request completed")
	}

	return resp, err
}

// InternalError is the response rendered when a handler returns an error
func InternalError() *lambda.Response {
	return &lambda.Response{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(`{"error": "Internal server error"}`),
	}
}
