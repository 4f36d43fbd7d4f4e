package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

// MockFixtureReloader Thread-Safe
type MockFixtureReloader struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (m *MockFixtureReloader) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	return m.Err
}

func (m *MockFixtureReloader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

const queueURL = "https://sqs.us-east-1.amazonaws.com/123/fixtures-reload"

func newTestReloader(client SQSClient, r Reloader) *SQSReloader {
	s := NewSQSReloader(client, queueURL, r)
	s.retryDelay = time.Millisecond
	s.waitTime = 0
	return s
}

func runFor(s *SQSReloader, d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	time.Sleep(d)
	cancel()
	<-done
}

func TestSQSReloader_ReloadsAndDeletes(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &MockFixtureReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{
			{Body: aws.String(`{"action":"reload"}`), ReceiptHandle: aws.String("handle_1")},
			{Body: aws.String(`{"action":"reload"}`), ReceiptHandle: aws.String("handle_2")},
		},
	}, nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	runFor(newTestReloader(mockSQS, reloader), 50*time.Millisecond)

	assert.Equal(t, 1, reloader.count(), "um lote dispara um único reload")
	mockSQS.AssertCalled(t, "DeleteMessage", mock.Anything, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String("handle_1"),
	})
	mockSQS.AssertCalled(t, "DeleteMessage", mock.Anything, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String("handle_2"),
	})
}

func TestSQSReloader_FailedReloadKeepsMessage(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &MockFixtureReloader{Err: errors.New("source down")}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{{ReceiptHandle: aws.String("handle_1")}},
	}, nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()

	runFor(newTestReloader(mockSQS, reloader), 30*time.Millisecond)

	assert.Equal(t, 1, reloader.count())
	mockSQS.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestSQSReloader_RetriesOnError(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &MockFixtureReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{{ReceiptHandle: aws.String("h")}},
	}, nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	runFor(newTestReloader(mockSQS, reloader), 50*time.Millisecond)

	assert.Equal(t, 1, reloader.count())
}

func TestSQSReloader_NoQueue(t *testing.T) {
	mockSQS := new(MockSQSClient)
	s := NewSQSReloader(mockSQS, "", &MockFixtureReloader{})
	s.Start(context.Background())
	mockSQS.AssertNotCalled(t, "ReceiveMessage", mock.Anything, mock.Anything)
}
