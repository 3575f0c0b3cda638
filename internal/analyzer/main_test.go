package analyzer

import (
	"os"
	"testing"

	"github.com/vkryukov/pulsar/pkg/logger"
)

func TestMain(m *testing.M) {
	if logger.Log == nil {
		if err := logger.Init("error", ""); err != nil {
			panic(err)
		}
	}
	os.Exit(m.Run())
}
