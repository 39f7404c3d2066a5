package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/coursedesk/coursedesk/internal/config"
)

var cfgFile string

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coursedesk",
		Short: "Sell courses from a single binary",
		Long: `Coursedesk: a self-hosted course selling platform. One binary. One command.

Coursedesk serves a course catalog with coupon discounts, free and paid
enrollment, and Razorpay checkout, managed through an admin API with
JWT-authenticated sessions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./coursedesk.yaml)")

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))
	cmd.AddCommand(newAdminCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newOpenAPICmd())

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("coursedesk")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.coursedesk")
	}

	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix("COURSEDESK")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}
