package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursedesk/coursedesk/internal/store"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the Coursedesk database",
	}

	cmd.AddCommand(newDBSeedCmd())
	cmd.AddCommand(newDBPingCmd())

	return cmd
}

// ---------- db seed ----------

func newDBSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Import courses and coupons from a YAML seed file",
		Long: `Import a course catalog from a YAML seed file. Coupons whose code already
exists are skipped, so re-running a seed is safe. Environment variables
referenced as ${VAR_NAME} in the file are expanded before parsing.`,
		Example: `  coursedesk db seed catalog.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBSeed(args[0])
		},
	}

	return cmd
}

func runDBSeed(path string) error {
	seed, err := store.LoadSeedFile(path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	courses, coupons, err := st.ImportSeed(context.Background(), seed)
	if err != nil {
		return fmt.Errorf("import seed: %w", err)
	}

	fmt.Printf("Imported %d course(s) and %d coupon(s) from %s\n", courses, coupons, path)
	return nil
}

// ---------- db ping ----------

func newDBPingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBPing()
		},
	}

	return cmd
}

func runDBPing() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	fmt.Printf("Database OK (%s)\n", cfg.Database.Driver)
	return nil
}
