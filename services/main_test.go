package services

import (
	"testing"

	"github.com/NomadCrew/feedback-client/logger"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	goleak.VerifyTestMain(m)
}
