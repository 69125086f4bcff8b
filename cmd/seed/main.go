package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"moodtracker/internal/config"
	"moodtracker/internal/db"
	"moodtracker/internal/logging"
	"moodtracker/internal/repository"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var days int

	root := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the database with demo doctors, patients and moods",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(s *seeder) error { return s.all(cmd.Context(), days) })
		},
	}
	root.PersistentFlags().IntVar(&days, "days", 7, "days of mood history per patient")

	root.AddCommand(&cobra.Command{
		Use:   "all",
		Short: "Clear all tables, then seed users and moods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(s *seeder) error { return s.all(cmd.Context(), days) })
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "Clear all tables, then seed doctors and patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(s *seeder) error {
				if err := s.clear(cmd.Context()); err != nil {
					return err
				}
				return s.seedUsers(cmd.Context())
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "moods",
		Short: "Replace all moods with fresh history for unassigned patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(s *seeder) error { return s.seedMoods(cmd.Context(), days) })
		},
	})

	return root
}

func run(cmd *cobra.Command, fn func(*seeder) error) error {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		return err
	}
	log.Info("Connected to database")

	if err := db.Migrate(gormDB, false); err != nil {
		log.WithError(err).Error("Failed to run migrations")
		return err
	}

	s := newSeeder(repository.NewUserRepository(gormDB), repository.NewMoodRepository(gormDB), log)
	if err := fn(s); err != nil {
		log.WithError(err).Error("Seeding failed")
		return err
	}
	printSummary(cmd, log)
	return nil
}

func printSummary(cmd *cobra.Command, log logrus.FieldLogger) {
	log.Info("Seeding complete")
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Doctors (password: %s):\n", doctorPassword)
	for _, d := range demoDoctors {
		fmt.Fprintf(out, "  - %s\n", d.email)
	}
	fmt.Fprintf(out, "Patients (password: %s):\n", patientPassword)
	for _, p := range demoPatients {
		fmt.Fprintf(out, "  - %s\n", p.email)
	}
}
