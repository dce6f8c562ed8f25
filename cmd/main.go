package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/recipemania/recipe-mania-server/cmd/api"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/db"
	"github.com/recipemania/recipe-mania-server/service/notification"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

func main() {
	// Check for command-line arguments
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			runMigrations()
			return
		case "clear-db":
			runDatabaseClear()
			return
		default:
			log.Fatalf("Unknown command: %s", os.Args[1])
		}
	}

	// Start the server
	startServer()
}

func runMigrations() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database for migrations")

	if err := performMigrations(DB); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func performMigrations(DB *gorm.DB) error {

	migrations := map[interface{}]string{
		&models.User{}:               "User",
		&models.ChefProfile{}:        "ChefProfile",
		&models.PasswordResetToken{}: "PasswordResetToken",
		&models.Recipe{}:             "Recipe",
		&models.Ingredient{}:         "Ingredient",
		&models.Step{}:               "Step",
		&models.RecipeReview{}:       "RecipeReview",
		&models.ChefReview{}:         "ChefReview",
		&models.Availability{}:       "Availability",
		&models.Booking{}:            "Booking",
		&models.Favorite{}:           "Favorite",
		&models.Message{}:            "Message",
		&models.Transaction{}:        "Transaction",
	}

	log.Println("Starting database migrations...")
	for model, name := range migrations {
		log.Printf("Migrating %s table...", name)
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %s table: %w", name, err)
		}
		log.Printf("%s migration successful", name)
	}

	directories := []string{
		"uploads/profiles",
	}

	for _, dir := range directories {
		if err := createDirectoryIfNotExist(dir); err != nil {
			log.Fatalf("Error creating directory %s: %v", dir, err)
		}
		log.Printf("Directory %s created/verified", dir)
	}

	log.Println("All migrations and directory setup completed successfully")
	return nil
}

func createDirectoryIfNotExist(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", path, err)
		}
	}
	return nil
}

func startServer() {
	// Initialize database connection
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()
	log.Println("Connected to the database")

	// Booking reminders go out hourly
	c := cron.New()
	c.AddJob("@hourly", notification.NewReminderJob(DB))
	c.Start()
	defer c.Stop()

	// Graceful shutdown setup
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Start the API server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	server := api.NewApiServer(":"+port, DB)

	go func() {
		if err := server.Run(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Server running on port %s", port)

	<-quit
	log.Println("Shutting down server...")
}

func clearDatabase(DB *gorm.DB, tables []interface{}) error {
	if len(tables) == 0 {
		// Default: Drop all tables
		tables = []interface{}{
			&models.Message{},
			&models.Transaction{},
			&models.Favorite{},
			&models.Booking{},
			&models.Availability{},
			&models.RecipeReview{},
			&models.ChefReview{},
			&models.Step{},
			&models.Ingredient{},
			&models.Recipe{},
			&models.PasswordResetToken{},
			&models.ChefProfile{},
			&models.User{},
		}
	}

	log.Println("Dropping tables...")

	for _, table := range tables {
		if err := DB.Migrator().DropTable(table); err != nil {
			log.Printf("Warning dropping table %T: %v", table, err)
		} else {
			log.Printf("Table %T dropped", table)
		}
	}

	return nil
}

func runDatabaseClear() {
	DB, err := db.NewPSQLStorage()
	if err != nil {
		log.Fatalf("Database initialization error: %v", err)
	}
	defer func() {
		sqlDB, _ := DB.DB()
		sqlDB.Close()
		log.Println("Database connection closed")
	}()

	log.Println("Preparing to clear database...")

	var confirmation string
	fmt.Print("Are you sure you want to clear the database? (yes/no): ")
	fmt.Scanln(&confirmation)

	if confirmation != "yes" {
		log.Println("Database clearing cancelled.")
		return
	}

	var tableNames string
	fmt.Print("Enter table names to clear (comma separated) or leave blank to clear all: ")
	fmt.Scanln(&tableNames)

	var tables []interface{}
	if tableNames != "" {
		tableList := splitTableNames(tableNames)
		for _, table := range tableList {
			switch table {
			case "User":
				tables = append(tables, &models.User{})
			case "ChefProfile":
				tables = append(tables, &models.ChefProfile{})
			case "PasswordResetToken":
				tables = append(tables, &models.PasswordResetToken{})
			case "Recipe":
				tables = append(tables, &models.Recipe{})
			case "Ingredient":
				tables = append(tables, &models.Ingredient{})
			case "Step":
				tables = append(tables, &models.Step{})
			case "RecipeReview":
				tables = append(tables, &models.RecipeReview{})
			case "ChefReview":
				tables = append(tables, &models.ChefReview{})
			case "Availability":
				tables = append(tables, &models.Availability{})
			case "Booking":
				tables = append(tables, &models.Booking{})
			case "Favorite":
				tables = append(tables, &models.Favorite{})
			case "Message":
				tables = append(tables, &models.Message{})
			case "Transaction":
				tables = append(tables, &models.Transaction{})
			default:
				log.Printf("Unknown table: %s", table)
			}
		}
	}

	if err := clearDatabase(DB, tables); err != nil {
		log.Fatalf("Error clearing database: %v", err)
	}

	log.Println("Database cleared successfully")
}

func splitTableNames(tableNames string) []string {
	return strings.Split(tableNames, ",")
}
