package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	goBlog "github.com/MrEthical07/goBlog"
	"github.com/MrEthical07/goBlog/session"
)

const serviceName = "goblog-cli"

// app carries what every subcommand shares. Tests swap the streams and the
// environment lookuper.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	env    envconfig.Lookuper

	configFile string
	envFile    string
	jsonOutput bool
	cfg        cliConfig

	log      zerolog.Logger
	client   *goBlog.Client
	redis    *redis.Client
	audit    *os.File
	shutdown func(context.Context) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		in:         os.Stdin,
		out:        out,
		errOut:     errOut,
		env:        envconfig.OsLookuper(),
		configFile: defaultConfigFile(),
		envFile:    ".env",
	}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "goblog",
		Short:         "Command line client for the blog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", a.configFile, "YAML config file")
	flags.StringVar(&a.envFile, "env-file", a.envFile, "dotenv file read before the environment")
	flags.BoolVar(&a.jsonOutput, "json", false, "print JSON instead of text")
	flags.String("base-url", "", "API origin, without /api")
	flags.String("profile", "", "session profile name")
	flags.String("token-file", "", "token file path (overrides the profile default)")
	flags.String("redis-addr", "", "keep tokens in Redis at this address")
	flags.Duration("timeout", 0, "per-request timeout")
	flags.String("log-level", "", "zerolog level (debug, info, warn, error)")

	cmd.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newStatusCommand(a),
		newRefreshCommand(a),
		newPostsCommand(a),
		newCategoriesCommand(a),
		newTagsCommand(a),
		newProfileCommand(a),
		newPasswordCommand(a),
	)
	return cmd
}

// run executes args and releases whatever setup acquired, whether or not the
// command succeeded.
func run(ctx context.Context, a *app, args []string) error {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, a.teardown(ctx))
}

// applyFlags copies the persistent flags the user actually set over cfg.
func (a *app) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"base-url":   &a.cfg.BaseURL,
		"profile":    &a.cfg.Profile,
		"token-file": &a.cfg.TokenFile,
		"redis-addr": &a.cfg.RedisAddr,
		"log-level":  &a.cfg.LogLevel,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if flags.Changed("timeout") {
		d, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		a.cfg.Timeout = d
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, a.configFile, a.envFile, a.env)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if err := a.applyFlags(cmd); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Str("profile", a.cfg.Profile).Logger()

	if a.cfg.OTLPEndpoint != "" {
		shutdown, err := initTracing(ctx, a.cfg.OTLPEndpoint, serviceName)
		if err != nil {
			return err
		}
		a.shutdown = shutdown
	}

	store, err := a.tokenStore()
	if err != nil {
		return err
	}

	b := goBlog.New().
		WithConfig(a.cfg.clientConfig()).
		WithTokenStore(store).
		WithLogger(a.log).
		WithUnauthorizedHandler(func(_ context.Context, ev goBlog.UnauthorizedEvent) {
			a.log.Warn().Str("path", ev.Path).Msg("session rejected by the API, log in again")
		})
	if a.cfg.AuditLog != "" {
		f, err := os.OpenFile(a.cfg.AuditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		a.audit = f
		b = b.WithAuditSink(goBlog.NewJSONWriterSink(f))
	}

	client, err := b.Build()
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

func (a *app) tokenStore() (session.TokenStore, error) {
	if a.cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		return session.NewRedisStore(a.redis, a.cfg.RedisPrefix, a.cfg.Profile, a.cfg.RedisTTL), nil
	}
	path, err := a.cfg.tokenFile()
	if err != nil {
		return nil, err
	}
	return session.NewFileStore(path), nil
}

func (a *app) teardown(ctx context.Context) error {
	var errs []error
	if a.client != nil {
		a.client.Close()
		a.client = nil
	}
	if a.audit != nil {
		errs = append(errs, a.audit.Close())
		a.audit = nil
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(context.WithoutCancel(ctx)))
		a.shutdown = nil
	}
	return errors.Join(errs...)
}

// resolve runs FetchUser and reports an expired session as an error.
func (a *app) resolve(ctx context.Context) (*goBlog.Identity, error) {
	if err := a.client.FetchUser(ctx); err != nil {
		return nil, err
	}
	st := a.client.State()
	if st.Status == goBlog.StatusExpired {
		return nil, fmt.Errorf("session ended: %w", st.ResolveErr)
	}
	if st.User == nil {
		return nil, goBlog.ErrNoSession
	}
	return st.User, nil
}

// readSecret returns flagValue if set, otherwise the first line of stdin.
func (a *app) readSecret(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(a.errOut, prompt+": ")
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return line, nil
}

// emit prints v as indented JSON when --json is set, otherwise calls text.
func (a *app) emit(v any, text func(io.Writer)) error {
	if !a.jsonOutput {
		text(a.out)
		return nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
