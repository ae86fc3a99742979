package service

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"chatgenius_backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	os.Exit(m.Run())
}
