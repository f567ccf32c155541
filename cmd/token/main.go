package main

import (
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ArowuTest/poolgame-backend/internal/config"
	"github.com/ArowuTest/poolgame-backend/pkg/jwt"
)

// Prints a bearer token for an operator or admin account
func main() {
	subject := flag.String("sub", "", "user id carried in the token")
	role := flag.String("role", "operator", "operator or admin")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *subject == "" {
		log.Fatal("-sub is required")
	}

	issuer, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		log.Fatal(err)
	}
	token, err := issuer.Issue(*subject, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(token)
}
