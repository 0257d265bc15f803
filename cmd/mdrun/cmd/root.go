package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/mdrun/pkg/config"
	"github.com/picogrid/mdrun/pkg/logger"
	"github.com/picogrid/mdrun/pkg/protocol"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mdrun",
	Short: "Configure and launch AMBER simulations",
	Long: `mdrun builds AMBER control files from named protocols, checks the
parameters for consistency and launches sander or pmemd.cuda on them.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadProtocols,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mdrun/config.yaml)")
	flags.String("profile", "", "machine profile to take solver binaries from")
	flags.String("profiles-file", "", "profiles file (default is $HOME/.mdrun/profiles.yaml)")
	flags.String("protocols-dir", "", "directory searched for protocol.yaml definitions")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable colored output")

	for _, name := range []string{"profile", "profiles-file", "protocols-dir", "log-level", "no-color"} {
		_ = viper.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mdinCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(profileCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME/" + config.DirName)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("MDRUN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine, flags and defaults apply
	configErr := viper.ReadInConfig()

	logger.SetLevel(logger.ParseLevel(viper.GetString("log_level")))
	logger.SetNoColor(viper.GetBool("no_color"))

	if configErr == nil {
		logger.Debugf("Using config file %s", viper.ConfigFileUsed())
	}
}

func loadProtocols(_ *cobra.Command, _ []string) error {
	dir := viper.GetString("protocols_dir")
	if dir == "" {
		return nil
	}
	n, err := protocol.RegisterDir(protocol.DefaultRegistry, dir)
	if err != nil {
		return fmt.Errorf("failed to load protocols: %w", err)
	}
	logger.Debugf("Registered %d protocols from %s", n, dir)
	return nil
}

func loadProfiles() (*config.Profiles, error) {
	if path := viper.GetString("profiles_file"); path != "" {
		return config.LoadProfilesFromFile(path)
	}
	return config.LoadProfiles()
}

func saveProfiles(profiles *config.Profiles) error {
	if path := viper.GetString("profiles_file"); path != "" {
		return config.SaveProfilesToFile(profiles, path)
	}
	return config.SaveProfiles(profiles)
}
