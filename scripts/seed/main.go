package main

import (
	"fmt"
	"log"

	"github.com/restwise/insomnia-coach/internal/config"
	"github.com/restwise/insomnia-coach/internal/seed"
)

func main() {
	cfg := config.Load()

	db, err := config.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSample user IDs for testing:")
	fmt.Println("  11111111-1111-1111-1111-111111111111 (Europe/Amsterdam, morning type)")
	fmt.Println("  22222222-2222-2222-2222-222222222222 (America/New_York, intermediate)")
	fmt.Println("  33333333-3333-3333-3333-333333333333 (Asia/Tokyo, evening type)")
}
