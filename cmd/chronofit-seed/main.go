// chronofit-seed loads workout plans from a YAML file into the database.
// Inserts are idempotent, so re-running against the same file is safe.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/kaioguedesm/chronofit/internal/config"
	"github.com/kaioguedesm/chronofit/internal/models"
	"github.com/kaioguedesm/chronofit/internal/storage"
)

type planFile struct {
	Plans []planSpec `yaml:"plans"`
}

type planSpec struct {
	Name      string         `yaml:"name"`
	Exercises []exerciseSpec `yaml:"exercises"`
}

type exerciseSpec struct {
	Name         string   `yaml:"name"`
	TargetSets   int      `yaml:"target_sets"`
	TargetReps   string   `yaml:"target_reps"`
	TargetWeight *float64 `yaml:"target_weight"`
	RestSeconds  int      `yaml:"rest_seconds"`
	Notes        string   `yaml:"notes"`
	MuscleGroup  string   `yaml:"muscle_group"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	plansPath := flag.String("plans", "", "path to plans YAML file (required)")
	login := flag.String("login", "local", "login of the user to own the plans")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *plansPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: chronofit-seed -config config.yaml -plans plans.yaml [-login local]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*plansPath)
	if err != nil {
		log.Error("failed to read plans file", "path", *plansPath, "error", err)
		os.Exit(1)
	}
	var file planFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		log.Error("failed to parse plans file", "error", err)
		os.Exit(1)
	}
	if len(file.Plans) == 0 {
		log.Error("plans file contains no plans")
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	userID, err := db.GetOrCreateUser(ctx, *login, "")
	if err != nil {
		log.Error("failed to ensure user", "login", *login, "error", err)
		os.Exit(1)
	}

	var inserted, skipped int
	for _, p := range file.Plans {
		row := models.PlanRow{ID: uuid.New(), UserID: userID, Name: p.Name}
		ok, err := db.InsertPlan(ctx, row)
		if err != nil {
			log.Error("failed to insert plan", "plan", p.Name, "error", err)
			os.Exit(1)
		}
		if !ok {
			skipped++
			log.Info("plan already exists, skipped", "plan", p.Name)
			continue
		}
		inserted++

		for i, ex := range p.Exercises {
			exRow := models.PlanExerciseRow{
				ID:           uuid.New(),
				PlanID:       row.ID,
				Position:     i,
				Name:         ex.Name,
				TargetSets:   ex.TargetSets,
				TargetReps:   ex.TargetReps,
				TargetWeight: ex.TargetWeight,
				RestSeconds:  ex.RestSeconds,
				Notes:        ex.Notes,
				MuscleGroup:  ex.MuscleGroup,
			}
			if err := exRow.Validate(); err != nil {
				log.Error("invalid exercise", "plan", p.Name, "position", i, "error", err)
				os.Exit(1)
			}
			if err := db.InsertPlanExercise(ctx, exRow); err != nil {
				log.Error("failed to insert exercise", "plan", p.Name, "exercise", ex.Name, "error", err)
				os.Exit(1)
			}
		}
		log.Info("plan seeded", "plan", p.Name, "exercises", len(p.Exercises))
	}

	log.Info("seed complete", "inserted", inserted, "skipped", skipped)
}
