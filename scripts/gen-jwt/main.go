// gen-jwt prints a session token for a user id, for curl and load tests:
// go run ./scripts/gen-jwt -user <id>
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"todo-bills/internal/auth"
	"todo-bills/internal/config"
)

func main() {
	userID := flag.String("user", "test-user", "owner id placed in the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := config.Get().JWTSecret
	if secret == "" {
		secret = "change-me"
	}

	signed, _, err := auth.NewTokens(secret, *ttl).Issue(*userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(signed)
}
