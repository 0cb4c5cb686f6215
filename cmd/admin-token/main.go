// admin-token выпускает JWT с ролью admin, подписанный настроенным секретом.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/pkg/auth"
)

func main() {
	_ = godotenv.Load()

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/config.yaml"
	}
	configPath := flag.String("config", defaultPath, "path to config file")
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Int("ttl", 0, "token lifetime in hours (default: auth.token_ttl_hours)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	if len(cfg.Auth.JWTSecret) < auth.MinSecretLength {
		logrus.Fatalf("auth.jwt_secret must be at least %d characters", auth.MinSecretLength)
	}

	hours := cfg.Auth.TokenTTLHours
	if *ttl > 0 {
		hours = *ttl
	}

	svc := auth.NewJWTService(func() string { return cfg.Auth.JWTSecret }, hours)
	token, err := svc.GenerateToken(*subject, auth.RoleAdmin)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to generate token")
	}
	fmt.Println(token)
}
