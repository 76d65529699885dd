package main

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/users"
)

const app = "resume-tailor-admin"

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "Operator commands for resume-tailor: migrations, plans and usage",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return telemetry.Init(telemetry.Options{
			JSON:  viper.GetBool("json"),
			Debug: viper.GetBool("debug"),
		})
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("database-url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("free-monthly-resumes", "FREE_MONTHLY_RESUMES"); err != nil {
		log.Fatalf("binding FREE_MONTHLY_RESUMES environment variable: %v", err)
	}
	viper.SetDefault("free-monthly-resumes", users.DefaultFreeMonthlyLimit)

	rootCmd.PersistentFlags().String("database-url", "", "postgres connection string (default $DATABASE_URL)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func openDB(ctx context.Context) (*sql.DB, error) {
	url := viper.GetString("database-url")
	if url == "" {
		// Fall back to .env files the way the API does.
		url = config.Load().DatabaseURL
	}
	if url == "" {
		return nil, errors.New("database url is required (--database-url or DATABASE_URL)")
	}
	return db.Connect(ctx, url, db.OptionsFromEnv(db.CLIOptions()))
}

func openUsers(ctx context.Context) (*users.Service, func() error, error) {
	sqlDB, err := openDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	return users.NewService(&users.PGRepo{DB: sqlDB}, viper.GetInt("free-monthly-resumes")), sqlDB.Close, nil
}
