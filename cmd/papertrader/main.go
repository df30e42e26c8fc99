package main

import (
	"log"
	"os"

	"PaperTrader/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := cli.Execute(); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}
