package main

import (
	"log"
	"os"

	"github.com/avstrong/luxestay/internal/app"
	"github.com/avstrong/luxestay/internal/config"
	"github.com/avstrong/luxestay/internal/logger"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}

	conf, err := config.Load(envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.NewFromConf(logger.Conf{Level: conf.LogLevel, Format: conf.LogFormat, Out: os.Stdout})

	var exitCode int

	if err := app.Run(conf, l); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	os.Exit(exitCode)
}
