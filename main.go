package main

import (
	"os"

	"WooWithTypesense/pkg/logging"
)

func main() {
	logger := logging.GetLogger()
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
