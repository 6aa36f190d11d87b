package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "paperqa",
	Short: "paperqa - Hallucination detection for research paper QA",
	Long: `paperqa verifies LLM answers about scientific papers against the
context chunks they were generated from.

It does not determine whether the paper itself is correct.

Every answer is checked three independent ways: citation markers are
resolved and tested against their chunks, the answer's key claims are
verified by natural language inference, and the answer is regenerated to
measure self-consistency. The signals fuse into a single hallucination
score with a LOW/MEDIUM/HIGH risk tier.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for paperqa.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("paperqa v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.paperqa/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.paperqa")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PAPERQA_*
	viper.SetEnvPrefix("PAPERQA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig builds the effective configuration: defaults overlaid by the
// config file and bound flags.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}

// resolveCredentials pulls provider secrets from the environment. Secrets
// never live in the config file.
func resolveCredentials(cfg *model.Config) error {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Password == "" {
		cfg.Cache.Redis.Password = os.Getenv("PAPERQA_REDIS_PASSWORD")
	}

	if cfg.Store.Enabled && cfg.Store.DSN == "" {
		cfg.Store.DSN = os.Getenv("PAPERQA_STORE_DSN")
		if cfg.Store.DSN == "" {
			return fmt.Errorf("PAPERQA_STORE_DSN environment variable not set")
		}
	}

	return nil
}
