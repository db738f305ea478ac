package transport

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/usecase"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSTransport exposes the produce-an-answer operation over a
// request/reply subject, for callers that live on the bus instead of
// HTTP. Payloads are the same ChatRequest/ProcessResult JSON the HTTP
// surface uses.
type NATSTransport struct {
	conn         *nats.Conn
	subject      string
	orchestrator *usecase.Orchestrator
	timeout      time.Duration
	sub          *nats.Subscription
}

func NewNATSTransport(url, subject, serviceName string, orch *usecase.Orchestrator, timeout time.Duration) (*NATSTransport, error) {
	conn, err := nats.Connect(url,
		nats.Name(serviceName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", url).Str("subject", subject).Msg("connected to NATS")
	return &NATSTransport{conn: conn, subject: subject, orchestrator: orch, timeout: timeout}, nil
}

func (t *NATSTransport) Start() error {
	sub, err := t.conn.Subscribe(t.subject, t.handleRequest)
	if err != nil {
		return err
	}
	t.sub = sub
	return nil
}

func (t *NATSTransport) handleRequest(msg *nats.Msg) {
	var req entity.ChatRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		t.respond(msg, &entity.ProcessResult{ErrorCode: entity.CodeInternalException, Details: "invalid request payload"})
		return
	}
	req.UserText = strings.TrimSpace(req.UserText)
	if req.UserText == "" {
		t.respond(msg, &entity.ProcessResult{ErrorCode: entity.CodeUserTextRequired})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	t.respond(msg, t.orchestrator.Run(ctx, req.UserText))
}

func (t *NATSTransport) respond(msg *nats.Msg, result *entity.ProcessResult) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("marshal NATS response")
		return
	}
	if err := msg.Respond(data); err != nil {
		log.Error().Err(err).Msg("send NATS response")
	}
}

func (t *NATSTransport) Close() error {
	if t.sub != nil {
		_ = t.sub.Unsubscribe()
	}
	if t.conn != nil {
		t.conn.Close()
	}
	return nil
}
