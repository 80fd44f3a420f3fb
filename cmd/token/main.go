// Mints an operator JWT for the sync API.
//
// Usage: token <subject>
package main

import (
	"fmt"
	"log"
	"os"

	"go-callsync/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: token <subject>")
	}

	_ = godotenv.Load()
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		utils.SetSecret(secret)
	}

	token, err := utils.GenerateToken(os.Args[1], []string{"operator"})
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(token)
}
