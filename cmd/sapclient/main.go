// cmd/sapclient/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sapmusicgroup/sap-backend/internal/appstate"
	"github.com/sapmusicgroup/sap-backend/internal/gateway"
)

type options struct {
	server      string
	sessionFile string
	verbose     bool
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "sapclient",
		Short:        "Command line client for the Sap Music Group publishing API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if opts.verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("SAP_SERVER_URL", "http://localhost:8080"), "API server root URL")
	rootCmd.PersistentFlags().StringVar(&opts.sessionFile, "session-file", defaultSessionFile(), "Where the session is kept between runs")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		loginCmd(opts),
		signupCmd(opts),
		logoutCmd(opts),
		syncCmd(opts),
		watchCmd(opts),
		payoutCmd(opts),
		summarizeCmd(opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a password session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := gateway.New(opts.server)
			sess, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := saveSession(opts.sessionFile, sess); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s\n", sess.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func signupCmd(opts *options) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and start its session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := gateway.New(opts.server)
			sess, err := client.Signup(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if err := saveSession(opts.sessionFile, sess); err != nil {
				return err
			}
			fmt.Printf("Signed up as %s\n", sess.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			err = client.Logout(cmd.Context())
			if rmErr := os.Remove(opts.sessionFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				return rmErr
			}
			return err
		},
	}
}

func syncCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Load everything the session can see and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := loadStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printJSON(overview(store))
		},
	}
}

func watchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow realtime changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, client, err := loadStore(ctx, opts)
			if err != nil {
				return err
			}
			events, err := client.Subscribe(ctx)
			if err != nil {
				return err
			}
			logrus.Info("Watching for changes, press Ctrl+C to stop")
			for {
				select {
				case <-ctx.Done():
					return printJSON(overview(store))
				case ev, ok := <-events:
					if !ok {
						if ctx.Err() != nil {
							return printJSON(overview(store))
						}
						return appstate.ErrFeedClosed
					}
					logrus.WithFields(logrus.Fields{"type": ev.Type, "table": ev.Table}).Info("Change received")
					store.Apply(ev)
				}
			}
		},
	}
}

func payoutCmd(opts *options) *cobra.Command {
	var amount float64
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Request a payout of available earnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := loadStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			req, err := store.RequestPayout(cmd.Context(), amount)
			if err != nil {
				return err
			}
			return printJSON(req)
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "Amount in USD")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func summarizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize SONG_ID",
		Short: "Summarize a song's publishing agreement in plain language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := loadStore(cmd.Context(), opts)
			if err != nil {
				return err
			}
			song, ok := store.Song(args[0])
			if !ok {
				return appstate.ErrNotFound
			}
			summary, err := store.Summarize(cmd.Context(), song.AgreementText)
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
}

// connect restores the saved session, refreshing it when it has expired.
func connect(ctx context.Context, opts *options) (*gateway.Client, error) {
	sess, err := readSession(opts.sessionFile)
	if err != nil {
		return nil, err
	}
	client := gateway.New(opts.server, gateway.WithSession(sess))
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		logrus.Debug("Session expired, refreshing")
		fresh, err := client.Refresh(ctx)
		if err != nil {
			return nil, fmt.Errorf("session expired, log in again: %w", err)
		}
		if err := saveSession(opts.sessionFile, fresh); err != nil {
			return nil, err
		}
	}
	return client, nil
}

func loadStore(ctx context.Context, opts *options) (*appstate.Store, *gateway.Client, error) {
	client, err := connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	store := appstate.New(client)
	if err := store.Load(ctx); err != nil {
		return nil, nil, err
	}
	return store, client, nil
}

type summary struct {
	User           *gateway.User   `json:"user"`
	Songs          int             `json:"songs"`
	ManagedWriters int             `json:"managedWriters"`
	SyncDeals      int             `json:"syncDeals"`
	ChatSessions   int             `json:"chatSessions"`
	Users          int             `json:"users,omitempty"`
	Balance        gateway.Balance `json:"balance"`
}

func overview(store *appstate.Store) summary {
	return summary{
		User:           store.CurrentUser(),
		Songs:          len(store.Songs()),
		ManagedWriters: len(store.ManagedWriters()),
		SyncDeals:      len(store.SyncDeals()),
		ChatSessions:   len(store.ChatSessions()),
		Users:          len(store.Users()),
		Balance:        store.Balance(),
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sapclient-session.json"
	}
	return filepath.Join(dir, "sapclient", "session.json")
}

func readSession(path string) (*gateway.Session, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.New("not logged in, run sapclient login first")
	}
	if err != nil {
		return nil, err
	}
	var sess gateway.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	return &sess, nil
}

func saveSession(path string, sess *gateway.Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
