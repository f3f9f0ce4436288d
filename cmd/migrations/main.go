package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/contacts/api/internal/adapters/repository/postgres"
	"github.com/contacts/api/internal/adapters/repository/postgres/migrations"
)

// Applies or rolls back the embedded migrations: `migrations up`,
// `migrations down` or `migrations status`.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	command := "up"
	flag.Parse()
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	db, err := postgres.Open(dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)

	switch command {
	case "up":
		err = goose.Up(db, ".")
	case "down":
		err = goose.Down(db, ".")
	case "status":
		err = goose.Status(db, ".")
	default:
		log.Fatalf("unknown command %q", command)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Migration command %q executed successfully.\n", command)
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
