package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/oksasatya/go-social-user-service/config"
	"github.com/oksasatya/go-social-user-service/internal/domain/entity"
	"github.com/oksasatya/go-social-user-service/pkg/helpers"
)

type seedUser struct {
	account  string
	name     string
	email    string
	password string
	role     entity.Role
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := []seedUser{
		{account: "root", name: "root", email: "root@example.com", password: cfg.RootAdminPassword, role: entity.RoleAdmin},
	}
	for i := 1; i <= 5; i++ {
		users = append(users, seedUser{
			account:  fmt.Sprintf("user%d", i),
			name:     fmt.Sprintf("user%d", i),
			email:    fmt.Sprintf("user%d@example.com", i),
			password: "12345678",
			role:     entity.RoleUser,
		})
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		hash, err := helpers.HashPassword(u.password)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		var id string
		err = db.QueryRow(`
			INSERT INTO users (account, name, email, password, role)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
			RETURNING id::text
		`, u.account, u.name, u.email, hash, u.role.String()).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed %s: %v", u.account, err)
		}
		ids = append(ids, id)
		fmt.Printf("seeded %s: id=%s email=%s role=%s\n", u.account, id, u.email, u.role)
	}

	// user(i) follows every user after it, so follower counts differ
	edges := 0
	for i := 1; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			res, err := db.Exec(`
				INSERT INTO followships (follower_id, following_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, ids[i], ids[j])
			if err != nil {
				log.Fatalf("failed to seed followship: %v", err)
			}
			n, _ := res.RowsAffected()
			edges += int(n)
		}
	}
	fmt.Printf("seeded %d new followships\n", edges)
}
