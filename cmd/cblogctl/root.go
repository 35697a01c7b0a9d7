package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/blog/persistence"
	"github.com/sun-exploit/cblog/blog/render"
	"github.com/sun-exploit/cblog/shared/config"
)

const listDateFormat = "%Y-%m-%d %H:%M"

// cli carries what every subcommand needs once configuration is loaded.
type cli struct {
	cfg  *config.Config
	loc  *time.Location
	opts persistence.Options
	now  func() time.Time

	backend     string
	dbPath      string
	databaseURL string
}

func newRootCmd() *cobra.Command {
	c := &cli{now: time.Now}

	root := &cobra.Command{
		Use:           "cblogctl",
		Short:         "Maintain the posts of a cblog repository",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.backend, "backend", "", "storage backend: cdb, sqlite or postgres (default from CBLOG_BACKEND)")
	flags.StringVar(&c.dbPath, "db", "", "database file of the cdb and sqlite backends (default from CBLOG_DB_PATH)")
	flags.StringVar(&c.databaseURL, "database-url", "", "postgres connection string (default from CBLOG_DATABASE_URL)")

	root.AddCommand(
		c.createCmd(),
		c.listCmd(),
		c.infoCmd(),
		c.getCmd(),
		c.addCmd(),
		c.delCmd(),
		c.setCmd(),
		c.commentCmd(),
		c.pathCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.SetupLogging()

	c.opts = persistence.Options{
		Backend:     cfg.Backend,
		Path:        cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
	}
	if c.backend != "" {
		c.opts.Backend = c.backend
	}
	if c.dbPath != "" {
		c.opts.Path = c.dbPath
	}
	if c.databaseURL != "" {
		c.opts.DatabaseURL = c.databaseURL
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	c.cfg, c.loc = cfg, loc
	return nil
}

// withStore runs fn against a writable store and releases it afterwards.
func (c *cli) withStore(ctx context.Context, fn func(*application.Maintenance) error) error {
	store, err := persistence.OpenStore(ctx, c.opts)
	if err != nil {
		return err
	}
	m := application.NewMaintenance(store, application.NewMarkdownRenderer(c.cfg.URL), c.now)

	err = fn(m)
	if cerr := store.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close repository: %w", cerr)
	}
	return err
}

func (c *cli) formatDate(ctime int64) string {
	return render.FormatDate(ctime, domain.FeedHTML, render.Options{
		DateFormat: listDateFormat,
		Location:   c.loc,
	})
}
