package messaging

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"rugpull-detector/internal/domain/entity"
	"rugpull-detector/internal/infrastructure/config"
	"rugpull-detector/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDetector struct {
	calls int
}

func (d *echoDetector) Detect(_ context.Context, req *entity.DetectRequest) *entity.DetectResponse {
	d.calls++
	return &entity.DetectResponse{
		Request:       *req,
		DetectionInfo: entity.DetectionInfo{Message: "No rugpull risks detected"},
	}
}

func (d *echoDetector) Analyze(*entity.Trace) *entity.Verdict {
	return &entity.Verdict{}
}

type rejectionCounter struct {
	transports []string
}

func (r *rejectionCounter) RequestRejected(transport string) {
	r.transports = append(r.transports, transport)
}

func newTestResponder() (*NATSResponder, *echoDetector, *rejectionCounter) {
	cfg := &config.NATSConfig{
		URL:           "nats://localhost:4222",
		SubjectPrefix: "rugpull",
		QueueGroup:    "rugpull-detector",
	}
	detector := &echoDetector{}
	rejections := &rejectionCounter{}
	return NewNATSResponder(cfg, detector, rejections, logger.NewNopLogger()), detector, rejections
}

func TestSubject(t *testing.T) {
	responder, _, _ := newTestResponder()
	assert.Equal(t, "rugpull.detect", responder.Subject())
}

func TestProcess(t *testing.T) {
	responder, detector, rejections := newTestResponder()

	payload, err := responder.process(context.Background(), []byte(`{"chainId":56,"txHash":"0xdef","trace":{"calls":[]}}`))
	require.NoError(t, err)

	var resp entity.DetectResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Equal(t, 1, detector.calls)
	assert.Empty(t, rejections.transports)
	assert.Equal(t, uint64(56), resp.Request.ChainID)
	assert.Equal(t, "0xdef", resp.Request.TxHash)
	assert.Equal(t, "No rugpull risks detected", resp.DetectionInfo.Message)
}

func TestProcessInvalidPayload(t *testing.T) {
	responder, detector, rejections := newTestResponder()

	payload, err := responder.process(context.Background(), []byte("not json"))
	require.NoError(t, err)

	var resp entity.DetectResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.Zero(t, detector.calls)
	assert.Equal(t, []string{"nats"}, rejections.transports)
	assert.True(t, resp.DetectionInfo.Error)
	assert.True(t, strings.HasPrefix(resp.DetectionInfo.Message, "Error analyzing transaction: invalid request payload"))
}

func TestConnectDisabled(t *testing.T) {
	responder, _, _ := newTestResponder()

	require.NoError(t, responder.Connect(context.Background()))
	assert.False(t, responder.IsConnected())
	assert.NoError(t, responder.Disconnect())
}
