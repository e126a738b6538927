// token mints a bearer token for a caller identity, signed with the
// service's JWT settings.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/config"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/pkg/auth"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	flags := pflag.NewFlagSet("token", pflag.ExitOnError)
	identity := flags.StringP("identity", "i", "", "caller identity to put in the token subject")
	configPath := flags.String("config", "./config/config.yaml", "path to the config file")
	ttl := flags.Duration("ttl", 0, "token lifetime, defaults to jwt.expiration")
	_ = flags.Parse(os.Args[1:])

	if *identity == "" {
		logrus.Fatal("--identity is required")
	}

	viperInstance, err := config.LoadConfig([]string{"--config", *configPath})
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}
	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}
	if cfg.JWT.Secret == "" {
		logrus.Fatal("jwt.secret is not set")
	}

	expiration := cfg.JWT.Expiration
	if *ttl > 0 {
		expiration = *ttl
	}

	token, err := auth.NewAuthenticator(cfg.JWT.Secret, cfg.JWT.Issuer, expiration).Issue(*identity, time.Now())
	if err != nil {
		logrus.Fatalf("Cannot issue token: %v", err)
	}
	fmt.Println(token)
}
