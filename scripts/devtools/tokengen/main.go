package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"
)

type authSection struct {
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		JWTIssuer string `yaml:"jwtIssuer"`
	} `yaml:"auth"`
}

func main() {
	configPath := flag.String("config", "configs/runner_service.yaml", "Path to runner service config")
	subject := flag.String("subject", "", "Token subject (caller identity)")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	section, err := loadAuth(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	token, err := mintToken(section.Auth.JWTSecret, section.Auth.JWTIssuer, *subject, *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func loadAuth(path string) (*authSection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}
	var section authSection
	if err := yaml.Unmarshal(data, &section); err != nil {
		return nil, fmt.Errorf("parse config failed: %w", err)
	}
	return &section, nil
}

func mintToken(secret, issuer, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("auth.jwtSecret is empty; the service accepts requests without a token")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
