package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedOrigins      []string
	bind                string
	countdown           time.Duration
	envFile             string
	port                int
	prefix              string
	profile             bool
	rateLimitGCInterval time.Duration
	sendBuffer          int
	sessionTimeout      time.Duration
	sweepInterval       time.Duration
	tlsCert             string
	tlsKey              string
	verbose             bool
	version             bool

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	for name, d := range map[string]time.Duration{
		"countdown":             c.countdown,
		"ratelimit-gc-interval": c.rateLimitGCInterval,
		"session-timeout":       c.sessionTimeout,
		"sweep-interval":        c.sweepInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid --%s (must be positive): %s", name, d)
		}
	}
	if c.sendBuffer < 1 {
		return fmt.Errorf("invalid --send-buffer (must be at least 1): %d", c.sendBuffer)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// envFileFromArgs finds --env-file before flags are parsed, since the file
// has to be loaded before viper reads the environment.
func envFileFromArgs(args []string) string {
	file := ".env"
	if v, ok := os.LookupEnv("BOULDERINGO_ENV_FILE"); ok {
		file = v
	}

	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--env-file="):
			file = strings.TrimPrefix(arg, "--env-file=")
		case arg == "--env-file" && i+1 < len(args):
			file = args[i+1]
		}
	}

	return file
}

func loadEnvFile(file string) error {
	if file == "" {
		return nil
	}

	err := godotenv.Load(file)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

func newCmd(cfg *Config, args []string) (*cobra.Command, error) {
	if err := loadEnvFile(envFileFromArgs(args)); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("BOULDERINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "boulderingo",
		Short:         "Multiplayer bouldering bingo, served over WebSockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg)

			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to open websockets, empty allows any (env: BOULDERINGO_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BOULDERINGO_BIND)")
	fs.DurationVar(&cfg.countdown, "countdown", 2*time.Minute, "lock-out countdown once no line can be completed (env: BOULDERINGO_COUNTDOWN)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "dotenv file to load before reading the environment (env: BOULDERINGO_ENV_FILE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: BOULDERINGO_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: BOULDERINGO_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: BOULDERINGO_PROFILE)")
	fs.DurationVar(&cfg.rateLimitGCInterval, "ratelimit-gc-interval", time.Minute, "how often idle rate limit entries are discarded (env: BOULDERINGO_RATELIMIT_GC_INTERVAL)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 64, "queued messages per client before it is dropped (env: BOULDERINGO_SEND_BUFFER)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are removed (env: BOULDERINGO_SESSION_TIMEOUT)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", time.Second, "how often rooms are checked for expiry and countdowns (env: BOULDERINGO_SWEEP_INTERVAL)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: BOULDERINGO_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: BOULDERINGO_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: BOULDERINGO_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: BOULDERINGO_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("boulderingo v{{.Version}}\n")
	cmd.SetArgs(args)

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd, nil
}
