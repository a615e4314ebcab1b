// Command knowhub is the KnowledgeHub terminal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/HashtagPatil/KnowledgeHub/app"
	"github.com/HashtagPatil/KnowledgeHub/client"
	"github.com/HashtagPatil/KnowledgeHub/internal/config"
	"github.com/HashtagPatil/KnowledgeHub/internal/logger"
	"github.com/HashtagPatil/KnowledgeHub/navigate"
)

// errSessionExpired is returned when the backend rejected a stored session.
var errSessionExpired = errors.New("signed out: the saved session is no longer valid, run `knowhub login`")

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	apiURL      string
	sessionPath string
	output      string
	debug       bool
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "knowhub",
		Short:         "KnowledgeHub client: search, read, write and polish articles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.WarnLevel
			if opts.debug {
				level = zerolog.DebugLevel
			}
			log.Logger = logger.Console(level)
			zerolog.SetGlobalLevel(level)
			if opts.debug {
				log.Debug().Msg("debug logging enabled")
			}

			switch opts.output {
			case outputText, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported --output %q (want text, json or yaml)", opts.output)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Backend API root (default $KNOWHUB_API_URL or http://localhost:8080/api)")
	rootCmd.PersistentFlags().StringVar(&opts.sessionPath, "session", "", "Session file (default $KNOWHUB_SESSION_PATH or the user config dir)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable verbose debug output")

	// Sub-commands
	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newSignupCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
	rootCmd.AddCommand(newWhoamiCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newBrowseCmd(opts))
	rootCmd.AddCommand(newMyCmd(opts))
	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newWriteCmd(opts))
	rootCmd.AddCommand(newAssistCmd(opts))

	return rootCmd
}

// config resolves settings: environment first, then flags.
func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.debug {
		cfg.Debug = true
	}
	switch {
	case o.sessionPath != "":
		cfg.SessionPath = o.sessionPath
	case cfg.SessionPath == "":
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate session file: %w", err)
		}
		cfg.SessionPath = filepath.Join(dir, "knowhub", "session.db")
	}
	return cfg, nil
}

// navigator prints every navigation request, e.g. "→ /articles/12".
func navigator(w io.Writer) navigate.Navigator {
	return navigate.Func(func(path string) {
		fmt.Fprintf(w, "→ %s\n", path)
	})
}

// withApp runs fn against a freshly opened App and closes it afterwards. An
// auth failure that ended a previously valid session becomes errSessionExpired.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error, extra ...app.Option) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	a, err := app.New(cfg, append([]app.Option{app.WithNavigator(navigator(cmd.OutOrStdout()))}, extra...)...)
	if err != nil {
		return err
	}
	wasSignedIn := a.Session.Authenticated()

	runErr := fn(cmd.Context(), a)
	if runErr != nil && wasSignedIn && client.IsAuth(runErr) && !a.Session.Authenticated() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Your session has expired and you have been signed out.")
		runErr = fmt.Errorf("%w: %s", errSessionExpired, client.Message(runErr, "unauthorized"))
	}
	return errors.Join(runErr, a.Close())
}

// printer writes command results in the selected output format.
func (o *rootOptions) printer(cmd *cobra.Command) *printer {
	return &printer{w: cmd.OutOrStdout(), format: o.output}
}
