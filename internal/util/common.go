package util

import "github.com/sirupsen/logrus"

// ContinueOrFatal stops the process when a bootstrap step fails.
func ContinueOrFatal(err error) {
	if err != nil {
		logrus.WithError(err).Fatal("stocknotifier: startup failed")
	}
}
