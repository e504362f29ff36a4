// Script to test forecast collaborator connectivity by fetching one prediction.
// Usage: go run scripts/forecast-test/main.go <user-uuid>
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/restwise/insomnia-coach/internal/forecast"
)

func main() {
	cfg := forecast.Config{
		BaseURL: getEnv("FORECAST_BASE_URL", "http://localhost:8090"),
		APIKey:  os.Getenv("FORECAST_API_KEY"),
	}

	fmt.Println("=== Forecast Connection Test ===")
	fmt.Printf("Base URL: %s\n", cfg.BaseURL)
	fmt.Printf("API Key:  %s\n", maskKey(cfg.APIKey))
	fmt.Println()

	client := forecast.NewClient(cfg)
	if !client.IsEnabled() {
		log.Fatal("Forecast client is disabled. Check your env vars.")
	}

	userID := uuid.New()
	if len(os.Args) > 1 {
		parsed, err := uuid.Parse(os.Args[1])
		if err != nil {
			log.Fatalf("Invalid user UUID %q: %v", os.Args[1], err)
		}
		userID = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pred, err := client.Predict(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to fetch prediction: %v", err)
	}
	if pred == nil {
		fmt.Println("✓ Service reachable, no prediction available for this user (degraded signal)")
		return
	}

	fmt.Println("✓ Prediction fetched successfully!")
	fmt.Printf("  Point estimate: %.1f%%\n", pred.PointEstimate)
	fmt.Printf("  95%% interval:   [%.1f, %.1f]\n", pred.Lower95, pred.Upper95)
	fmt.Printf("  Trend:          %s\n", pred.Trend)
	fmt.Printf("  Confidence:     %.2f\n", pred.Confidence)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func maskKey(key string) string {
	if len(key) < 8 {
		if key == "" {
			return "(empty)"
		}
		return "***"
	}
	return key[:8] + "..."
}
