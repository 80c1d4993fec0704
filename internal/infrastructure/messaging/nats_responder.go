package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/domain/service"
	"rugpull-detector/internal/infrastructure/config"
	"rugpull-detector/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// RejectionRecorder counts requests rejected before analysis
type RejectionRecorder interface {
	RequestRejected(transport string)
}

// NATSResponder answers detection requests over NATS request/reply
type NATSResponder struct {
	conn       *nats.Conn
	sub        *nats.Subscription
	config     *config.NATSConfig
	detector   service.RugpullDetector
	rejections RejectionRecorder
	logger     *logger.Logger
}

// NewNATSResponder creates a new NATS responder
func NewNATSResponder(
	cfg *config.NATSConfig,
	detector service.RugpullDetector,
	rejections RejectionRecorder,
	logger *logger.Logger,
) *NATSResponder {
	return &NATSResponder{
		config:     cfg,
		detector:   detector,
		rejections: rejections,
		logger:     logger.WithComponent("nats-responder"),
	}
}

// Subject returns the subject detection requests are received on
func (n *NATSResponder) Subject() string {
	return fmt.Sprintf("%s.detect", n.config.SubjectPrefix)
}

// Connect connects to the NATS server and subscribes to detection requests
func (n *NATSResponder) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("rugpull-detector"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	n.conn = conn

	subject := n.Subject()
	sub, err := conn.QueueSubscribe(subject, n.config.QueueGroup, n.handleMessage)
	if err != nil {
		conn.Close()
		n.conn = nil
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	n.sub = sub

	n.logger.Info("Listening for detection requests",
		zap.String("subject", subject),
		zap.String("queue_group", n.config.QueueGroup))

	return nil
}

// handleMessage answers a single detection request
func (n *NATSResponder) handleMessage(msg *nats.Msg) {
	if msg.Reply == "" {
		n.logger.Warn("Dropping detection request without reply subject", zap.String("subject", msg.Subject))
		return
	}

	payload, err := n.process(context.Background(), msg.Data)
	if err != nil {
		n.logger.Error("Failed to encode detection response", zap.Error(err))
		return
	}

	if err := msg.Respond(payload); err != nil {
		n.logger.Error("Failed to respond to detection request", zap.Error(err))
	}
}

// process decodes a request payload, runs detection and encodes the response
func (n *NATSResponder) process(ctx context.Context, data []byte) ([]byte, error) {
	var req entity.DetectRequest
	if err := json.Unmarshal(data, &req); err != nil {
		n.logger.Warn("Failed to unmarshal detection request", zap.Error(err))
		if n.rejections != nil {
			n.rejections.RequestRejected("nats")
		}
		return json.Marshal(&entity.DetectResponse{
			DetectionInfo: entity.DetectionInfo{
				Error:   true,
				Message: fmt.Sprintf("Error analyzing transaction: invalid request payload: %v", err),
			},
		})
	}

	return json.Marshal(n.detector.Detect(ctx, &req))
}

// Disconnect drains the subscription and closes the connection
func (n *NATSResponder) Disconnect() error {
	if n.sub != nil {
		if err := n.sub.Drain(); err != nil {
			n.logger.Warn("Failed to drain NATS subscription", zap.Error(err))
		}
		n.sub = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	n.logger.Info("Disconnected from NATS")
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSResponder) IsConnected() bool {
	return n.conn != nil && n.conn.IsConnected()
}
