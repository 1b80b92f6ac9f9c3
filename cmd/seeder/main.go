// cmd/seeder/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/outreach-backend/internal/config"
	"github.com/unclebandit/outreach-backend/internal/db"
	"github.com/unclebandit/outreach-backend/internal/logger"
)

var (
	configFile   string
	seedContacts int
	seedName     string
	seedProduct  string
	seedRandom   int64
)

var rootCmd = &cobra.Command{
	Use:           "seeder",
	Short:         "Database admin for the outreach backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the outreach tables if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := open()
		if err != nil {
			return err
		}
		defer db.DB.Close()

		if err := db.Migrate(db.DB); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo campaign with fake contacts",
	Long: `Insert one draft campaign and enroll --contacts generated contacts in it.

Pass --random-seed to get the same contacts on every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := open()
		if err != nil {
			return err
		}
		defer db.DB.Close()

		if err := db.Migrate(db.DB); err != nil {
			return err
		}
		res, err := seedDemo(cmd.Context(), db.DB, seedOptions{
			Contacts:    seedContacts,
			Name:        seedName,
			ProductName: seedProduct,
			Seed:        seedRandom,
			Logger:      log,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded campaign %s with %d contacts\n", res.CampaignID, res.Contacts)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml)")

	seedCmd.Flags().IntVar(&seedContacts, "contacts", 10, "number of fake contacts to enroll")
	seedCmd.Flags().StringVar(&seedName, "name", "Demo outreach", "campaign name")
	seedCmd.Flags().StringVar(&seedProduct, "product", "AI-Sales", "product name")
	seedCmd.Flags().Int64Var(&seedRandom, "random-seed", 0, "faker seed; 0 picks a random one")

	rootCmd.AddCommand(migrateCmd, seedCmd)
}

func open() (*zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := db.Init(cfg.DSN(), log); err != nil {
		return nil, err
	}
	return log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seeder:", err)
		os.Exit(1)
	}
}
