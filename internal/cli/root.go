package cli

import (
	"errors"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"depsentry/internal/app"
	"depsentry/internal/shared"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "DEPSENTRY"

// exitCodeBlocked is returned when the security policy aborts the
// package-manager invocation. It is a decision, not a failure.
const exitCodeBlocked = 7

// errInstallBlocked marks a policy abort so Execute can map it to the
// dedicated exit code.
var errInstallBlocked = errors.New("installation blocked by security policy")

type RootConfig struct {
	ConfigFile string
	LogLevel   string
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:     "depsentry",
		Short:   "Install-time dependency scanning and blocking",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().String("api-url", "https://api.depsentry.example.com", "Alert lookup service URL")
	cmd.PersistentFlags().String("api-token", "", "Alert lookup service token")
	cmd.PersistentFlags().String("registry-url", shared.DefaultRegistryURL, "Default package registry URL")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("api_url", cmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("api_token", cmd.PersistentFlags().Lookup("api-token"))
	_ = viper.BindPFlag("registry_url", cmd.PersistentFlags().Lookup("registry-url"))

	cmd.AddCommand(newScanCommand())
	cmd.AddCommand(newExecCommand())
	cmd.AddCommand(newFixCommand())
	return cmd
}

func newAppService() app.Service {
	return app.NewService(
		viper.GetString("api_url"),
		viper.GetString("api_token"),
		viper.GetString("registry_url"),
	)
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("depsentry")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/depsentry")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	if errors.Is(err, errInstallBlocked) {
		return exitCodeBlocked
	}
	code := errbuilder.CodeOf(err)
	switch code {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal, errbuilder.CodeUnavailable:
		return 5
	default:
		return 1
	}
}
