package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/drewfead/kpcheck/internal/commands"
)

// lambdaHandler runs the check command. A non-empty request body is used as
// an --only scenario pattern.
func lambdaHandler(ctx context.Context, request events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	var out bytes.Buffer
	app := commands.NewApp()
	app.Writer = &out

	args := []string{"kpcheck", "check", "--output", "json"}
	if pattern := strings.TrimSpace(request.Body); pattern != "" {
		args = append(args, "--only", pattern)
	}

	err := app.RunContext(ctx, args)
	if err != nil && out.Len() == 0 {
		return events.LambdaFunctionURLResponse{Body: "error", StatusCode: http.StatusInternalServerError}, fmt.Errorf("failed to execute app: %v", err)
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusExpectationFailed
	}
	return events.LambdaFunctionURLResponse{
		Body:       out.String(),
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func main() {
	lambda.Start(lambdaHandler)
}
