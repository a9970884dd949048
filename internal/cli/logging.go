package cli

import (
	"os"

	"github.com/bdlm/log"
	"github.com/spf13/cobra"
)

const defaultLogLevel = "warn"

func configureLogging(cmd *cobra.Command, args []string) error {
	levelFlag, err := OptionalStringFlag(cmd, "log-level")
	if err != nil {
		return err
	}
	if levelFlag == "" {
		levelFlag = os.Getenv("LOG_LEVEL")
	}
	if levelFlag == "" {
		levelFlag = defaultLogLevel
	}

	level, err := log.ParseLevel(levelFlag)
	if err != nil {
		log.WithField("level", levelFlag).Warnf("invalid log level, using %s", defaultLogLevel)
		level, _ = log.ParseLevel(defaultLogLevel)
	}
	log.SetFormatter(&log.TextFormatter{})
	log.SetLevel(level)
	return nil
}
