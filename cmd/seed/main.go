package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/todo-api/config"
	pginfra "github.com/oksasatya/todo-api/internal/infrastructure/postgres"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

// Seeds a demo user with a handful of tasks. Safe to re-run: the user is
// upserted and tasks are only added when the user has none.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	username := "demouser"
	password := "password123"
	hash, err := helpers.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, updated_at = now()
		RETURNING id
	`, username, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s username=%s password=%s\n", id, username, password)

	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM tasks WHERE user_id = $1 AND deleted_at IS NULL`, id).Scan(&existing); err != nil {
		log.Fatalf("failed to count tasks: %v", err)
	}
	if existing > 0 {
		fmt.Printf("user already has %d tasks; skipping\n", existing)
		return
	}

	tasks := []struct {
		content string
		done    bool
	}{
		{"buy milk", false},
		{"walk the dog", true},
		{"read a chapter of a book", false},
		{"book dentist appointment", false},
		{"water the plants", true},
	}
	for _, t := range tasks {
		if _, err := pool.Exec(ctx, `INSERT INTO tasks (user_id, content, is_completed) VALUES ($1, $2, $3)`, id, t.content, t.done); err != nil {
			log.Fatalf("failed to seed task %q: %v", t.content, err)
		}
	}
	fmt.Printf("seeded %d tasks\n", len(tasks))
}
