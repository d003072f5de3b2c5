// Package main prints an Argon2id hash for ADMIN_PASSWORD_HASH.
//
// Usage: go run ./cmd/genhash <password>
package main

import (
	"fmt"
	"os"

	"roleta.com.br/server/internal/features/admin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/genhash <password>")
		os.Exit(1)
	}

	hash, err := admin.HashPassword(os.Args[1], admin.DefaultHashParams)
	if err != nil {
		fmt.Printf("Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Password hash (put it in .env as ADMIN_PASSWORD_HASH):")
	fmt.Println(hash)
}
