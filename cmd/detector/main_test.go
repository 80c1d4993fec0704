package main

import (
	"testing"

	"rugpull-detector/internal/infrastructure/config"
	"rugpull-detector/internal/infrastructure/httpapi"
	"rugpull-detector/internal/infrastructure/logger"
	"rugpull-detector/internal/infrastructure/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestAppGraphResolves(t *testing.T) {
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	err = fx.ValidateApp(
		appOptions(cfg, logger.NewNopLogger()),
		fx.Invoke(func(*httpapi.Server, *messaging.NATSResponder) {}),
	)
	assert.NoError(t, err)
}

func TestAppGraphHasNoBareZapLogger(t *testing.T) {
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	err = fx.ValidateApp(
		appOptions(cfg, logger.NewNopLogger()),
		fx.Invoke(func(*zap.Logger) {}),
	)
	assert.Error(t, err, "components take the logger wrapper, not *zap.Logger")
}
