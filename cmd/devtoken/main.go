// Command devtoken prints a bearer token for calling the API locally with
// authentication enabled.
//
//	go run ./cmd/devtoken -auth-id <uuid> -role mother
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/iliyamo/doulacare/internal/utils"
)

func main() {
	_ = godotenv.Load()
	authID := flag.String("auth-id", "", "auth UUID to put in sub (random when empty)")
	role := flag.String("role", "mother", "application role: mother, doula or admin")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	id := uuid.New()
	if *authID != "" {
		var err error
		if id, err = uuid.Parse(*authID); err != nil {
			log.Fatalf("invalid -auth-id: %v", err)
		}
	}
	tok, err := utils.NewAccessToken(secret, id, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("sub=%s expires=%s\n%s\n", id, tok.Exp.Format(time.RFC3339), tok.Token)
}
