// Command add_admin creates an administrator account.
//
//	go run ./backend/cmd/add_admin -email admin@example.com -password secret123 -name "Site Admin"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"learnity/backend/config"
	"learnity/backend/services"
	"learnity/backend/utils"
)

func main() {
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "", "login email (required)")
	password := flag.String("password", "", "password, at least 8 characters (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	svc := services.New(db, cfg, services.Deps{})
	user, err := svc.Auth.CreateAdmin(context.Background(), *name, *email, *password)
	if err != nil {
		fmt.Printf("Error creating admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin created successfully: %s (%s)\n", user.Name, user.Email)
}
