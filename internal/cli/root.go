// Package cli builds the devnotes command line client.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"devnotes/internal/client"
	"devnotes/internal/config"
	"devnotes/internal/notes"
	"devnotes/internal/session"
)

// App holds what every command needs once configuration is loaded.
type App struct {
	Config  *config.ClientConfig
	Session *session.Session
	Client  *client.Client

	logFile io.Closer
}

// NewViewModel builds a view-model over the app's client and session.
func (a *App) NewViewModel() *notes.ViewModel {
	return notes.NewViewModel(notes.NewStore(a.Client), a.Client, a.Session)
}

// Login exchanges credentials for a token and stores it in the session.
func (a *App) Login(ctx context.Context, email, password string) error {
	res, err := a.Client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return a.Session.SetToken(res.Token, res.ExpiresAt, res.User.Email)
}

func (a *App) close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// NewCmdRoot returns the devnotes root command.
func NewCmdRoot() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "devnotes",
		Short: "Keep code snippets and notes on your devnotes server.",
		Long: heredoc.Doc(`
			devnotes is a client for a devnotes server. Notes carry free text,
			an optional code snippet with its language, an image URL, tags and a folder.

			Configuration comes from the environment or a .env file:
			  DEVNOTES_API_URL       server base URL (default http://localhost:5001/api)
			  DEVNOTES_SESSION_PATH  where the login token is kept
			  DEVNOTES_LOG_FILE      write client logs here
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.AddCommand(
		newCmdRegister(app),
		newCmdLogin(app),
		newCmdLogout(app),
		newCmdWhoami(app),
		newCmdProfile(app),
		newCmdPasswd(app),
		newCmdList(app),
		newCmdAdd(app),
		newCmdImport(app),
		newCmdTUI(app),
	)
	return cmd
}

func (a *App) load() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	a.Config = cfg

	var out io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	slog.SetDefault(config.NewLogger(out, cfg.LogLevel, cfg.LogFormat))

	sess, err := session.Load(cfg.SessionPath)
	if err != nil {
		return err
	}
	a.Session = sess
	a.Client = client.New(cfg.APIURL, sess, cfg.HTTPTimeout)

	slog.Debug("client configured", "api_url", cfg.APIURL, "session", cfg.SessionPath)
	return nil
}

// prompt reads one line from in after printing label, unless value is
// already set.
func prompt(in *bufio.Reader, out io.Writer, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
