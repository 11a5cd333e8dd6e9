package redis

import (
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func nullLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}
