package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
	"portal/internal/config"
	"portal/internal/features/auth"
	"portal/internal/features/home"
	platformhttp "portal/internal/platform/http"
	"portal/internal/platform/storage"
	sqlitestore "portal/internal/platform/storage/sqlite"
	"portal/internal/platform/wiring"
)

var backupCmd = &cli.Command{
	Name:      "backup",
	Usage:     "Write a zip of the database and uploads",
	ArgsUsage: "[dest.zip]",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		// Fold the WAL into the main file so the copy is complete.
		if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			_ = db.Close()
			return fmt.Errorf("db checkpoint: %w", err)
		}
		_ = db.Close()
		path, err := storage.BackupToZip(cfg, cmd.Args().First())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Fprintf(cmd.Root().Writer, "backup written to %s\n", path)
		return nil
	},
}

var userCmd = &cli.Command{
	Name:  "user",
	Usage: "Manage accounts",
	Commands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Create an account",
			ArgsUsage: "<username>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "password",
					Usage:   "Password for the new account; read from stdin when empty",
					Sources: cli.EnvVars("PORTAL_NEW_PASSWORD"),
				},
			},
			Action: userAddAction,
		},
	},
}

func userAddAction(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.Args().First())
	if err := auth.ValidateUsername(username); err != nil {
		return err
	}
	password := cmd.String("password")
	if password == "" {
		var err error
		password, err = readLine(cmd.Root().Reader)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}
	if err := auth.ValidatePassword(password, password); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	repos := sqlitestore.NewRepos(db)
	id, err := repos.Users.CreateUser(ctx, username, string(hash))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if err := repos.Audit.WriteAuditLog(ctx, int(id), "user.create", username, map[string]string{"source": "cli"}); err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "created user %s (id %d)\n", username, id)
	return nil
}

var routesCmd = &cli.Command{
	Name:  "routes",
	Usage: "Print the navigation table in match order",
	Action: func(ctx context.Context, cmd *cli.Command) error {
		return printRoutes(cmd.Root().Writer)
	},
}

func printRoutes(w io.Writer) error {
	table := platformhttp.Table(wiring.Deps{}, config.Config{})
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tNAME\tVIEW\tREQUIRES AUTH")
	for _, route := range table.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", route.Path, route.Name, route.View.ID(), route.RequiresAuth)
	}
	return tw.Flush()
}

var settingsCmd = &cli.Command{
	Name:  "settings",
	Usage: "Manage site settings",
	Commands: []*cli.Command{
		{
			Name:      "about",
			Usage:     "Set the about page text; empty text restores the default",
			ArgsUsage: "[text]",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg, err := config.LoadConfig()
				if err != nil {
					return fmt.Errorf("config error: %w", err)
				}
				db, err := openDB(cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				repos := sqlitestore.NewRepos(db)
				text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
				if text == "" {
					return repos.Settings.DeleteSetting(ctx, home.AboutSettingKey)
				}
				return repos.Settings.SetSetting(ctx, home.AboutSettingKey, text)
			},
		},
	},
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
