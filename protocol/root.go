package protocol

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/sieve/constants"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

var (
	configPath    string
	filterExpr    string
	outputPath    string
	encryptionKey string
	unresolved    string
	concurrency   int

	// stdout receives protocol messages and, by default, the filtered records
	stdout io.Writer = os.Stdout

	commands = []*cobra.Command{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sieve",
	Short: "filter records with compact filter expressions",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		viper.SetEnvPrefix(constants.EnvPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		viper.SetDefault(constants.LogLevel, constants.DefaultLogLevel)
		viper.SetDefault(constants.Concurrency, constants.DefaultConcurrency)
		folder := utils.Ternary(configPath == "", os.TempDir(), filepath.Dir(configPath)).(string)
		viper.SetDefault(constants.ConfigFolder, folder)

		if cmd.Flags().Changed("concurrency") {
			viper.Set(constants.Concurrency, concurrency)
		}

		// logger uses CONFIG_FOLDER
		logger.Init()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'sieve --help' to display usage guide", args[0])
		}
		return nil
	},
}

func CreateRootCommand() *cobra.Command {
	return RootCmd
}

func init() {
	commands = append(commands, checkCmd, specCmd, applyCmd)
	RootCmd.AddCommand(commands...)

	RootCmd.PersistentFlags().StringVarP(&filterExpr, "filter", "f", "", "Filter expression, e.g. Text|Author@=*null")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "", "Path to the source and filter config (json or yaml)")
	RootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "(Optional) Write matching records to this file instead of stdout")
	RootCmd.PersistentFlags().StringVarP(&encryptionKey, "encryption-key", "", "", "(Optional) Decryption key for the source config: a KMS key ARN or a local secret")
	RootCmd.PersistentFlags().StringVarP(&unresolved, "unresolved", "", "", "(Optional) What to do with unknown filter names: fail, skip_property or skip_term")
	RootCmd.PersistentFlags().IntVarP(&concurrency, "concurrency", "", 0, "(Optional) Evaluate in parallel with this many workers; 0 streams lazily")
	RootCmd.PersistentFlags().String("log-level", constants.DefaultLogLevel, "(Optional) Log level: debug, info, warn, error")
	_ = viper.BindPFlag(constants.LogLevel, RootCmd.PersistentFlags().Lookup("log-level"))

	// Disable Cobra CLI's built-in usage and error handling
	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true
}
