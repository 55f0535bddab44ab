// Command token mints a bearer token for the admin API using JWT_SIGNING_KEY.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"pastelaria-service/pkg/config"
	"pastelaria-service/pkg/jwtutil"
	"pastelaria-service/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email of the admin user")
	userID := flag.Uint("user-id", 1, "id of the admin user")
	role := flag.String("role", "admin", "role claim")
	flag.Parse()

	appConfig, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	if *email == "" {
		log.Fatal("Missing -email")
	}
	if !appConfig.AuthEnabled() {
		log.Fatal("JWT_SIGNING_KEY is empty, authentication is disabled")
	}

	token, err := jwtutil.NewJWTUtil(&appConfig.JWT).GenerateToken(*email, *userID, *role)
	if err != nil {
		log.Fatal("Failed to generate token", zap.Error(err))
	}

	log.Info("Token generated",
		zap.String("email", *email),
		zap.Int("expiration_hours", appConfig.JWT.ExpirationHours))
	fmt.Fprintln(os.Stdout, token)
}
