// ticketing ledger HTTP service
package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/config"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/appServer"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	appServer.NewServer(cfg)
}
