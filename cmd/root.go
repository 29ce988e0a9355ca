// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/config"
	"github.com/xkilldash9x/matrixctl/internal/console"
	"github.com/xkilldash9x/matrixctl/internal/observability"
	"github.com/xkilldash9x/matrixctl/internal/patients"
	"github.com/xkilldash9x/matrixctl/internal/shell"
)

const (
	envPrefix         = "MATRIXCTL"
	localConfigFile   = "matrixctl.yaml"
	userConfigFileRel = "~/.matrixctl/config.yaml"
)

// NewRootCommand builds a fresh command tree. Every call has its own viper
// instance, so flags never leak between invocations.
func NewRootCommand() *cobra.Command {
	return newRootCommand(viper.New())
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	var (
		cfgFile string
		cfg     *config.Config
	)

	rootCmd := &cobra.Command{
		Use:   "matrixctl",
		Short: "Interactive browser remote control for the MatrixCare web app.",
		Long: `matrixctl opens a Chrome window on the MatrixCare app and reads short
commands (click, fill, goto, add_vitals, ...) from the terminal.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Info("Starting matrixctl", zap.String("version", Version))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default ./"+localConfigFile+", then "+userConfigFileRel+")")
	flags.Bool("headless", false, "run Chrome without a window")
	flags.String("base-url", "", "base URL of the MatrixCare web app")
	flags.String("api-url", "", "base URL of the MatrixCare REST API")
	_ = v.BindPFlag("browser.headless", flags.Lookup("headless"))
	_ = v.BindPFlag("app.base_url", flags.Lookup("base-url"))
	_ = v.BindPFlag("api.base_url", flags.Lookup("api-url"))

	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// Execute runs the root command with ctx. The caller maps the error to an exit code.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	observability.Sync()
	return err
}

func runShell(cmd *cobra.Command, cfg *config.Config) error {
	logger := observability.GetLogger()
	out := console.New(cmd.OutOrStdout(), cfg.Shell.Color)

	session := browser.NewSession(browser.NewChromeLauncher(cfg.Browser, cfg.App.BaseURL, logger), logger)
	directory := patients.NewClient(cfg.API, &http.Client{}, logger)

	return shell.New(session, directory, out, cfg, logger).Run(cmd.Context(), cmd.InOrStdin())
}

// loadConfig layers defaults, the config file, MATRIXCTL_* env and bound flags.
func loadConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	config.SetDefaults(v)

	if cfgFile == "" {
		cfgFile = findConfigFile()
	}
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("invalid config path %q: %w", cfgFile, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return config.NewConfigFromViper(v)
}

// findConfigFile returns the first existing default config location, or "".
func findConfigFile() string {
	candidates := []string{localConfigFile}
	if userFile, err := homedir.Expand(userConfigFileRel); err == nil {
		candidates = append(candidates, userFile)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
