package main

import (
	"flag"
	"log"

	"wg-parser-service/internal"
)

func main() {
	envPath := flag.String("env", "", "path to .env file (optional)")
	flag.Parse()

	var args []string
	if *envPath != "" {
		args = append(args, *envPath)
	}

	app, err := internal.NewApp(args...)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Application stopped with error: %v", err)
	}
}
