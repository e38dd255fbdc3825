package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"member-info-api/internal/middleware"
	"member-info-api/pkg/lambda"
)

// GinHandler adapts the router to gin so the local server serves exactly
// what the Lambda function serves.
func (r *Router) GinHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			data, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
				return
			}
			body = data
		}

		req := &lambda.Request{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Headers:     flatten(c.Request.Header),
			QueryParams: flatten(c.Request.URL.Query()),
			Body:        body,
			RequestID:   c.GetString(middleware.RequestIDKey),
		}

		resp, err := r.Handle(c.Request.Context(), req)
		if err != nil {
			_ = c.Error(err)
			resp = InternalError()
		}

		for key, value := range resp.Headers {
			c.Header(key, value)
		}
		c.Data(resp.StatusCode, resp.Headers["Content-Type"], resp.Body)
	}
}

// flatten keeps the last value of each key, as API Gateway does for
// single-value query strings and headers.
func flatten(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[len(vals)-1]
		}
	}
	return out
}
