package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/config"
	"github.com/roksva123/go-matrix-tasks/internal/model"
	"github.com/roksva123/go-matrix-tasks/internal/repository"
	"github.com/roksva123/go-matrix-tasks/internal/store"
	"github.com/roksva123/go-matrix-tasks/internal/timefmt"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	reset := flag.Bool("reset", false, "wipe every stored collection before seeding")
	department := flag.String("department", "General", "default department name")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed load config: ", err)
	}
	if cfg.Store.Backend == "memory" {
		log.Fatal("store.backend is memory; nothing to seed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backends, err := repository.Open(ctx, cfg.Store, zap.NewNop())
	if err != nil {
		log.Fatal("failed open backend: ", err)
	}
	defer backends.Close()

	if *reset {
		n, err := backends.Purger.Purge(ctx, store.AllKeys)
		if err != nil {
			log.Fatal("failed reset: ", err)
		}
		fmt.Printf("Removed %d stored collections\n", n)
	}

	st, err := store.Open(ctx, backends.Backend, zap.NewNop())
	if err != nil {
		log.Fatal("failed open store: ", err)
	}

	// Default department
	dept, ok := findDepartment(st.Departments(), *department)
	if !ok {
		dept, err = st.PutDepartment(ctx, model.Department{
			Name:      *department,
			CreatedAt: timefmt.ISO(time.Now()),
		})
		if err != nil {
			log.Fatal("failed create department: ", err)
		}
	}

	// Read env (fallback if not provided)
	username := getEnv("SEED_ADMIN_USERNAME", "manager")
	password := getEnv("SEED_ADMIN_PASSWORD", "")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	member := model.StaffMember{
		ID:         uuid.NewString(),
		FullName:   getEnv("SEED_ADMIN_NAME", "Administrator"),
		Username:   username,
		Password:   password,
		Role:       model.RoleAdmin,
		Active:     true,
		Department: fmt.Sprint(dept.ID),
		JoinDate:   timefmt.ISO(time.Now()),
	}
	for _, m := range st.Staff() {
		if strings.EqualFold(m.Username, username) {
			member.ID = m.ID
			break
		}
	}
	if err := st.PutStaff(ctx, member); err != nil {
		log.Fatal("failed insert admin: ", err)
	}

	fmt.Println("Admin seeded successfully!")
	fmt.Println("Username:", username)
	fmt.Println("Department:", dept.Name)
}

func findDepartment(deps []model.Department, name string) (model.Department, bool) {
	for _, d := range deps {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return model.Department{}, false
}

func getEnv(key, defaultValue string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v
}
