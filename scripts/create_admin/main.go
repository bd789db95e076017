package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/imagingpedia/learning-service/internal/config"
	"github.com/imagingpedia/learning-service/internal/repositories/postgres"
	"github.com/imagingpedia/learning-service/internal/services"
	"github.com/imagingpedia/learning-service/internal/utils"
	"github.com/imagingpedia/learning-service/internal/validator"
	"github.com/imagingpedia/learning-service/pkg"
)

// Seeds an admin console account. The HTTP create route requires an existing
// admin token, so the first account comes from here.
func main() {
	username := flag.String("username", "", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (min 8 chars)")
	flag.Parse()

	if *username == "" || *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger("warn")

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	adminService := services.NewAdminService(repo, db, logger, validator.New(), cfg.JWTSecret)

	admin, err := adminService.Create(context.Background(), &services.AdminCreateRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Created admin %q (id %d)\n", admin.Username, admin.ID)
}
