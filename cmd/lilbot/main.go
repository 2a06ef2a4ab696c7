package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/vectorious/lilbot/internal/cli"
)

func main() {
	// A missing .env is fine, real deployments configure the
	// environment directly.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		log.Fatalf("lilbot: %v", err)
	}
}
