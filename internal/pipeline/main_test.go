package pipeline

import (
	"os"
	"testing"

	"contract-risk-go/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init("info", "console", "")
	os.Exit(m.Run())
}
