package sync

import (
	"context"
	"fmt"
	"time"

	"WooWithTypesense/internal/telegram"
	"WooWithTypesense/pkg/logging"
)

const maxRestarts = 3

func reportf(format string, args ...interface{}) {
	telegram.SendMessageToTelegramWithLogError(fmt.Sprintf(format, args...))
}

// RunWithRecovered keeps Run alive across panics, up to maxRestarts times.
func (s *Service) RunWithRecovered(ctx context.Context, interval time.Duration) {
	logger := logging.GetLogger()
	logger.Println("Start Service RunWithRecovered")
	defer logger.Println("End Service RunWithRecovered")

	for index := 0; index < maxRestarts; index++ {
		if !s.runRecovered(ctx, interval) {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	reportf("sync restarts stopped after %d panics", maxRestarts)
}

// runRecovered reports whether Run ended with a panic.
func (s *Service) runRecovered(ctx context.Context, interval time.Duration) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			reportf("sync crashed and will be restarted, error: %v", r)
			panicked = true
		}
	}()
	s.Run(ctx, interval)
	return false
}
