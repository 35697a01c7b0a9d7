package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sun-exploit/cblog/blog/application"
	"github.com/sun-exploit/cblog/blog/domain"
	"github.com/sun-exploit/cblog/blog/persistence"
)

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create an empty repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := persistence.Create(cmd.Context(), c.opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s repository at %s\n", c.opts.Backend, c.opts.Location())
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				keys, err := m.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.formatDate(k.CTime), k.Slug)
				}
				return nil
			})
		},
	}
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <post>",
		Short: "Show the metadata of a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				p, err := m.Info(cmd.Context(), args[0])
				if err != nil {
					return notFound(args[0], err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Title: %s\n", p.Title)
				fmt.Fprintf(out, "Date: %s\n", c.formatDate(p.CTime))
				fmt.Fprintf(out, "Tags: %s\n", persistence.JoinTags(p.Tags))
				fmt.Fprintf(out, "Comments: %d\n", p.CommentCount)
				return nil
			})
		},
	}
}

func (c *cli) getCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <post>",
		Short: "Export a post in the format read by add",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				content, err := m.Export(cmd.Context(), args[0])
				if err != nil {
					return notFound(args[0], err)
				}
				if output == "-" {
					_, err := cmd.OutOrStdout().Write(content)
					return err
				}
				if output == "" {
					output = args[0]
				}
				if err := os.WriteFile(output, content, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `destination file, "-" for stdout (default ./<post>)`)
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Add or replace posts from markdown files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				for _, name := range args {
					content, err := os.ReadFile(name)
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", name, err)
					}
					p, err := m.Add(cmd.Context(), filepath.Base(name), content)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Slug)
				}
				return nil
			})
		},
	}
}

func (c *cli) delCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "del <post>...",
		Aliases: []string{"delete", "rm"},
		Short:   "Delete posts with their comments",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				for _, slug := range args {
					if err := m.Delete(cmd.Context(), slug); err != nil {
						return notFound(slug, err)
					}
				}
				return nil
			})
		},
	}
}

func (c *cli) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <post> <field>=<value>",
		Short: "Change one field of a post (title, source, html or tags)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				return notFound(args[0], m.Set(cmd.Context(), args[0], args[1]))
			})
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post> <author> <text>...",
		Short: "Attach a comment to a post",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := strings.Join(args[2:], " ")
			return c.withStore(cmd.Context(), func(m *application.Maintenance) error {
				return notFound(args[0], m.Comment(cmd.Context(), args[0], args[1], body))
			})
		},
	}
}

func (c *cli) pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.opts.Location())
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cblogctl %s\n", version)
		},
	}
}

func notFound(slug string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("unknown post: %s", slug)
	}
	return err
}
