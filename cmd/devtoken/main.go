// Command devtoken mints an access token for local development against the
// configured JWT secret.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"stockingest/internal/config"
	"stockingest/internal/domain"
	"stockingest/internal/service"
)

func main() {
	establishment := flag.String("establishment", "", "establishment id (random when empty)")
	user := flag.String("user", "", "user id (random when empty)")
	email := flag.String("email", "dev@localhost", "email claim")
	role := flag.String("role", string(domain.RoleAdmin), "role claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "production" {
		log.Fatal("refusing to mint tokens in production")
	}

	input := service.TokenInput{
		EstablishmentID: parseOrNew(*establishment),
		UserID:          parseOrNew(*user),
		Email:           *email,
		Role:            domain.UserRole(*role),
	}
	token, expiresAt, err := service.NewTokenService(cfg.JWT).IssueToken(input)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	log.Printf("establishment=%s user=%s expires=%s", input.EstablishmentID, input.UserID, expiresAt.Format("2006-01-02 15:04"))
	fmt.Println(token)
}

func parseOrNew(s string) uuid.UUID {
	if s == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(s)
	if err != nil {
		log.Fatalf("invalid uuid %q: %v", s, err)
	}
	return id
}
