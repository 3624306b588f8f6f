package main

import (
	"context"
	"fmt"
	"log"

	"github.com/khoahotran/usermatch/adapters/persistence"
	"github.com/khoahotran/usermatch/internal/config"
	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/logger"
)

var demoUsers = []user.UserProfile{
	{Name: "Lan", Age: 27, Gender: "female", Email: "lan@example.com", City: "Hanoi", Interests: []string{"music", "hiking", "coffee"}},
	{Name: "Minh", Age: 29, Gender: "male", Email: "minh@example.com", City: "Hanoi", Interests: []string{"music", "coffee"}},
	{Name: "Thu", Age: 33, Gender: "female", Email: "thu@example.com", City: "Hanoi", Interests: []string{"chess", "hiking"}},
	{Name: "Bao", Age: 45, Gender: "male", Email: "bao@example.com", City: "Hanoi", Interests: []string{"music"}},
	{Name: "Vy", Age: 26, Gender: "female", Email: "vy@example.com", City: "Da Nang", Interests: []string{"surfing", "coffee"}},
	{Name: "Quang", Age: 31, Gender: "male", Email: "quang@example.com", City: "Hue", Interests: []string{"history"}},
}

func main() {
	fmt.Println("adding demo user profiles into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	if err := persistence.RunMigrations(cfg.DB.DSN, appLogger); err != nil {
		log.Fatalf("cannot run migrations: %v", err)
	}

	pool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewPostgresUserRepo(pool, appLogger)
	ctx := context.Background()
	for i := range demoUsers {
		u := demoUsers[i]
		if err := repo.Create(ctx, &u); err != nil {
			log.Fatalf("cannot add user %s: %v", u.Email, err)
		}
		fmt.Printf("added %s (id=%d)\n", u.Name, u.ID)
	}

	fmt.Printf("added %d user profiles successfully!\n", len(demoUsers))
}
