package main

import (
	"context"
	"log"

	"ai-advisor-be/internal/bootstrap"
	"ai-advisor-be/internal/config"
	"ai-advisor-be/internal/server"
	"ai-advisor-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Knowledge Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.AuditService != nil {
		go func() {
			log.Println("Background: Starting Usage Audit Consumer...")
			if err := container.AuditService.Run(); err != nil {
				log.Printf("Background Audit Error: %v", err)
			}
		}()
	}

	// 5. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
