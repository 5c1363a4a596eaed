package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"talexus-backend/internal/bootstrap"
	"talexus-backend/internal/shared/config"
	"talexus-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	app = built
}

// unrecoverable reports whether retrying the message can ever succeed.
func unrecoverable(err error) bool {
	var empty workerproc.ErrEmptyBody
	var decode workerproc.ErrDecode
	var missing workerproc.ErrMissingResumeID
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &missing)
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := workerproc.HandleMessage(ctx, app.ResumeProcessor, record.Body)
		if err == nil {
			continue
		}
		if unrecoverable(err) {
			// Retrying a malformed payload never helps; let SQS drop it.
			log.Printf("dropping unrecoverable message %s: %v", record.MessageId, err)
			continue
		}
		log.Printf("parse job failed for message %s: %v", record.MessageId, err)
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(handler)
}
