package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stderr)

	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("basketctl failed")
	}
}
