package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/joho/godotenv"

	"catalogqa/api"
	"catalogqa/internal/config"
	"catalogqa/internal/forward"
	"catalogqa/internal/uploads"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if appConfig.Profiling.Enabled {
		go func() {
			addr := ":" + appConfig.Profiling.Port
			log.Printf("pprof listening on %s", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Printf("pprof server stopped: %v", err)
			}
		}()
	}

	cache := uploads.NewCache()
	sender := forward.NewSender(appConfig.Forward.BatchSize, appConfig.Forward.Concurrency)

	app := api.NewApp(appConfig, cache, sender)

	addr := ":" + appConfig.Server.Port
	log.Printf("Catalog QA service listening on %s", addr)
	if err := http.ListenAndServe(addr, app.Handler()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
