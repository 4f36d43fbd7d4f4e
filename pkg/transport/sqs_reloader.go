package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SQSClient define a interface necessária para o reloader (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Reloader recarrega as fixtures do fake.
type Reloader interface {
	Reload() error
}

// SQSReloader recarrega as fixtures a cada mensagem recebida na fila.
// Várias mensagens num mesmo lote disparam um único reload.
type SQSReloader struct {
	client     SQSClient
	queueURL   string
	reloader   Reloader
	logger     zerolog.Logger
	retryDelay time.Duration
	waitTime   int32
}

func NewSQSReloader(client SQSClient, queueURL string, reloader Reloader) *SQSReloader {
	return &SQSReloader{
		client:     client,
		queueURL:   queueURL,
		reloader:   reloader,
		logger:     log.With().Str("component", "sqs_reloader").Logger(),
		retryDelay: 5 * time.Second,
		waitTime:   20,
	}
}

// Start inicia o monitoramento (bloqueante) até ctx ser cancelado.
func (s *SQSReloader) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Reload de fixtures desativado.")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("📡 Monitorando fila SQS para reload de fixtures")

	for ctx.Err() == nil {
		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     s.waitTime, // Long polling
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("Erro no SQS")
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
			continue
		}

		if len(out.Messages) == 0 {
			continue
		}

		s.logger.Info().Int("messages", len(out.Messages)).Msg("🔔 Pedido de reload recebido via SQS")
		if err := s.reloader.Reload(); err != nil {
			// mensagens ficam na fila e voltam após o visibility timeout
			s.logger.Error().Err(err).Msg("❌ Falha no reload de fixtures")
			continue
		}

		for _, msg := range out.Messages {
			if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(s.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				s.logger.Warn().Err(err).Msg("Falha ao remover mensagem da fila")
			}
		}
	}
	s.logger.Info().Msg("Parando monitoramento SQS")
}
