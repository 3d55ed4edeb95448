//go:build ignore

// generate_password prints a bcrypt hash for seeding an admin account by hand.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/your-org/bookstore-backend/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/generate_password.go <password>")
	}

	password := os.Args[1]
	passwords := auth.NewPasswordManager(12)

	if err := passwords.ValidatePassword(password); err != nil {
		log.Fatal("Password does not meet the account rules: ", err)
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		log.Fatal("Error generating hash: ", err)
	}

	fmt.Printf("Hash: %s\n", hash)

	if err := passwords.VerifyPassword(password, hash); err != nil {
		log.Fatal("Hash verification failed: ", err)
	}

	fmt.Println("Hash verified successfully")
}
