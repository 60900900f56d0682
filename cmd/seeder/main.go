package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/padel-roster/internal/calendar"
	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/mauv0809/padel-roster/internal/database"
	"github.com/mauv0809/padel-roster/internal/metrics"
	"github.com/mauv0809/padel-roster/internal/roster"
)

const (
	seedAdminID = "seed-admin"
	seedGroupID = "seed-group"
	weekRange   = 3
	courts      = 2
)

var firstNames = []string{"Anna", "Bent", "Carla", "Dorte", "Emil", "Frida", "Gustav", "Hanne", "Ivan", "Jonas"}

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":          "roster.db",
		"SEED_SPREADSHEET": "seed-spreadsheet",
	}
	for _, key := range []string{"DB_NAME", "SEED_SPREADSHEET", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	store := club.New(db)
	engine := roster.New(store, metrics.NewService())
	now := time.Now()
	today := calendar.DateOf(now)

	err = store.CreateAdmin(ctx, club.Admin{ID: seedAdminID, Username: "seeder", FirstName: "Seed", LastName: "Admin", CreatedAt: now})
	if err != nil && !errors.Is(err, club.ErrDuplicate) {
		log.Fatalf("Failed to create admin: %s", err)
	}

	group := club.Group{
		ID:                    seedGroupID,
		Name:                  "Seeded Americano",
		AdminID:               seedAdminID,
		GameWeekday:           calendar.Weekday(today.AddDate(0, 0, 2)),
		WeekRange:             weekRange,
		CourtLimit:            courts,
		Spreadsheet:           cfg["SEED_SPREADSHEET"],
		RegistrationOpenUntil: calendar.ComputeInitialWindow(today, weekRange),
		CreatedAt:             now,
	}
	err = store.CreateGroup(ctx, group)
	if err != nil && !errors.Is(err, club.ErrDuplicate) {
		log.Fatalf("Failed to create group: %s", err)
	}
	log.Info("Ensured seed group exists.", "groupID", group.ID, "openUntil", calendar.FormatDate(group.RegistrationOpenUntil))

	for i, name := range firstNames {
		profile := roster.Profile{
			MemberID:  fmt.Sprintf("seed-member-%d", i+1),
			FirstName: name,
			LastName:  "Seeder",
			Phone:     fmt.Sprintf("+452000%04d", i+1),
			Username:  fmt.Sprintf("seeder%d", i+1),
		}
		if _, err := engine.Join(ctx, group.ID, profile, now); err != nil && !errors.Is(err, roster.ErrAlreadyMember) {
			log.Fatalf("Failed to add member %s: %s", profile.MemberID, err)
		}
	}
	log.Info("Ensured seed members exist.", "count", len(firstNames))

	registered := 0
	for d := today; !d.After(group.RegistrationOpenUntil); d = d.AddDate(0, 0, 1) {
		if !calendar.IsGameDay(d, group.GameWeekday) {
			continue
		}
		// Fill every place plus one waiting list entry.
		for i := 0; i <= group.PlayerCount() && i < len(firstNames); i++ {
			memberID := fmt.Sprintf("seed-member-%d", i+1)
			_, err := engine.Register(ctx, group.ID, memberID, d, now.Add(time.Duration(i)*time.Second))
			if errors.Is(err, roster.ErrAlreadyRegistered) {
				continue
			}
			if err != nil {
				log.Fatalf("Failed to register %s for %s: %s", memberID, calendar.FormatDate(d), err)
			}
			registered++
		}
	}
	log.Info("Successfully seeded signups.", "registered", registered)
}
