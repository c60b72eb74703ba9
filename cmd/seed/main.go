// Command seed populates a fresh database with the default admin
// credential, the mechanic roster and a few sample bookings. It is
// idempotent: mechanics and bookings are only inserted into an empty
// table, the admin hash is refreshed on every run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"autofix/internal/config"
	"autofix/internal/database"
	"autofix/internal/logging"
	"autofix/internal/models"
	"autofix/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	var (
		adminUser = flag.String("admin-user", "admin", "admin username to seed")
		adminPass = flag.String("admin-pass", "", "admin password (falls back to ADMIN_PASSWORD env)")
		demo      = flag.Bool("demo", false, "also insert sample bookings")
	)
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := baseLogger.With().Str("component", "seed").Logger()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	password := *adminPass
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		return fmt.Errorf("admin password is required (-admin-pass or ADMIN_PASSWORD)")
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	if err := db.UpsertAdmin(ctx, *adminUser, hash); err != nil {
		return err
	}
	logger.Info().Str("username", *adminUser).Msg("admin credential seeded")

	count, err := db.CountMechanics(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		for _, m := range defaultMechanics() {
			if err := db.CreateMechanic(ctx, m); err != nil {
				return fmt.Errorf("seed mechanic %s: %w", m.Name, err)
			}
		}
		logger.Info().Int("count", len(defaultMechanics())).Msg("mechanics seeded")
	} else {
		logger.Info().Int64("count", count).Msg("mechanics already present, skipping")
	}

	if *demo {
		if err := seedDemoBookings(ctx, db, &logger); err != nil {
			return err
		}
	}

	return nil
}

func defaultMechanics() []*models.Mechanic {
	return []*models.Mechanic{
		{Name: "John Smith", Specialization: "Engine & Transmission", Experience: "10 years"},
		{Name: "Sarah Johnson", Specialization: "Brakes & Suspension", Experience: "8 years"},
		{Name: "Mike Williams", Specialization: "Electrical Systems", Experience: "12 years"},
		{Name: "Emily Brown", Specialization: "General Maintenance", Experience: "6 years"},
	}
}

func seedDemoBookings(ctx context.Context, db *database.DB, logger *zerolog.Logger) error {
	stats, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	if stats.TotalBookings > 0 {
		logger.Info().Int64("count", stats.TotalBookings).Msg("bookings already present, skipping demo data")
		return nil
	}

	mechanic := func(id int64) *int64 { return &id }
	demo := []*models.Booking{
		{
			CustomerName: "Alice Thompson", CustomerEmail: "alice.thompson@example.com", CustomerPhone: "555-0101",
			CarMake: "Toyota", CarModel: "Corolla", CarYear: "2019", LicensePlate: "ABC-1234",
			IssueDescription: "Strange rattling noise when braking",
			PreferredDate:    "2026-09-05", PreferredTime: "09:00",
			Status: models.StatusPending,
		},
		{
			CustomerName: "Robert Martinez", CustomerEmail: "robert.martinez@example.com", CustomerPhone: "555-0102",
			CarMake: "Honda", CarModel: "Civic", CarYear: "2021", LicensePlate: "XYZ-5678",
			IssueDescription: "Check engine light is on",
			PreferredDate:    "2026-09-03", PreferredTime: "14:00",
			Status: models.StatusInProgress, MechanicID: mechanic(2),
		},
		{
			CustomerName: "Jennifer Lee", CustomerEmail: "jennifer.lee@example.com", CustomerPhone: "555-0103",
			CarMake: "Ford", CarModel: "Focus", CarYear: "2018", LicensePlate: "DEF-9012",
			IssueDescription: "Oil change and general inspection",
			PreferredDate:    "2026-08-28", PreferredTime: "11:30",
			Status: models.StatusCompleted, MechanicID: mechanic(1),
		},
	}

	for _, b := range demo {
		ref, err := service.NewReference()
		if err != nil {
			return err
		}
		b.Reference = ref

		note := fmt.Sprintf("New booking created for %s", b.CustomerName)
		if err := db.CreateBooking(ctx, b, note); err != nil {
			return fmt.Errorf("seed booking for %s: %w", b.CustomerName, err)
		}
	}

	logger.Info().Int("count", len(demo)).Msg("demo bookings seeded")
	return nil
}
