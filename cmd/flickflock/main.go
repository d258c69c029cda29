package main

import (
	"log"

	"github.com/MrSnakeDoc/flickflock/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ flickflock failed to start: %v", err)
	}
}
