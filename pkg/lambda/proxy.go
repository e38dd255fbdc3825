package lambda

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
)

// FromProxyRequest converts an API Gateway proxy event into a Request.
func FromProxyRequest(event events.APIGatewayProxyRequest) (*Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded && event.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = decoded
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     event.Headers,
		QueryParams: event.QueryStringParameters,
		Body:        body,
		RequestID:   event.RequestContext.RequestID,
	}, nil
}

// ToProxyResponse converts a Response into the API Gateway proxy shape.
func ToProxyResponse(resp *Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}
