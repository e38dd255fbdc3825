package main

import (
	"context"

	"member-info-api/internal/handlers"
	"member-info-api/pkg/lambda"
	"member-info-api/pkg/server"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

var connections = server.NewConnectionManager(nil)

func handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	warm := connections.IsHealthy()
	container, err := connections.GetContainer(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize container")
		return lambda.ToProxyResponse(handlers.InternalError()), nil
	}

	req, err := lambda.FromProxyRequest(event)
	if err != nil {
		container.Logger.WithError(err).Warn("Failed to decode request")
		return lambda.ToProxyResponse(handlers.InternalError()), nil
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok && req.RequestID == "" {
		req.RequestID = lc.AwsRequestID
	}
	container.Logger.WithFields(logrus.Fields{
		"request_id": req.RequestID,
		"warm":       warm,
	}).Debug("Invocation started")

	resp, err := container.Router.Handle(ctx, req)
	if err != nil {
		container.Logger.WithError(err).WithField("request_id", req.RequestID).Error("Handler failed")
		return lambda.ToProxyResponse(handlers.InternalError()), nil
	}

	return lambda.ToProxyResponse(resp), nil
}

// shutdown releases the store when the execution environment receives SIGTERM
func shutdown() {
	if err := connections.Cleanup(); err != nil {
		logrus.WithError(err).Error("Failed to release resources on shutdown")
	}
}

func main() {
	awslambda.StartWithOptions(handler, awslambda.WithEnableSIGTERM(shutdown))
}
