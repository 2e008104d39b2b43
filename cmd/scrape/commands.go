package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newEditionCmd(a *app) *cobra.Command {
	var isbn string
	cmd := &cobra.Command{
		Use:   "edition [id]",
		Short: "Fetch one edition by provider id, or by ISBN with --isbn",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if isbn != "" {
				if len(args) > 0 {
					return errors.New("pass either an edition id or --isbn, not both")
				}
				return a.record(ctx, "edition", isbn, func() (any, int, error) {
					e, err := a.catalog.GetEditionByISBN(ctx, "", isbn)
					return e, 1, err
				})
			}
			if len(args) == 0 {
				return errors.New("an edition id or --isbn is required")
			}
			editionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.record(ctx, "edition", args[0], func() (any, int, error) {
				e, err := a.catalog.GetEdition(ctx, "", editionID)
				return e, 1, err
			})
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "ISBN-10 or ISBN-13 to look up")
	return cmd
}

func newEditionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editions <id>...",
		Short: "Fetch several editions; output keeps argument order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.record(ctx, "editions", strings.Join(args, ","), func() (any, int, error) {
				editions, err := a.catalog.BulkEditions(ctx, "", ids)
				return editions, len(editions), err
			})
		},
	}
	return cmd
}

func newWorkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "work <id>",
		Short: "Fetch a work and the ids of its editions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.record(ctx, "work", args[0], func() (any, int, error) {
				w, err := a.catalog.GetWork(ctx, "", workID)
				return w, 1, err
			})
		},
	}
	return cmd
}

func newAuthorCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author <id>",
		Short: "Fetch one author by provider id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authorID, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.record(ctx, "author", args[0], func() (any, int, error) {
				au, err := a.catalog.GetAuthor(ctx, "", authorID)
				return au, 1, err
			})
		},
	}
	return cmd
}

func newAuthorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors <id>...",
		Short: "Fetch several authors; output keeps argument order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return a.record(ctx, "authors", strings.Join(args, ","), func() (any, int, error) {
				authors, err := a.catalog.BulkAuthors(ctx, "", ids)
				return authors, len(authors), err
			})
		},
	}
	return cmd
}

func newExpandCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <isbn>",
		Short: "Fetch the work behind an ISBN with every listed edition and its authors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.record(ctx, "expand", args[0], func() (any, int, error) {
				expansion, err := a.catalog.ExpandISBN(ctx, "", args[0])
				if err != nil {
					return nil, 0, err
				}
				return expansion, 1 + len(expansion.Editions), nil
			})
		},
	}
	return cmd
}

func newProvidersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List registered metadata providers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.write(a.catalog.Providers())
		},
	}
}

// record runs fn, logs it as a scrape run when a records database is open,
// and writes the result.
func (a *app) record(ctx context.Context, command, target string, fn func() (any, int, error)) error {
	if a.records == nil {
		result, _, err := fn()
		if err != nil {
			return err
		}
		return a.write(result)
	}

	run, err := a.records.StartRun(ctx, command, target)
	if err != nil {
		return err
	}

	runLog := a.log.WithField("run_id", run.ID)

	result, n, runErr := fn()
	if err := a.records.FinishRun(ctx, run.ID, n, runErr); err != nil {
		runLog.WithError(err).Warn("Failed to finish scrape run")
	}
	if runErr != nil {
		runLog.WithError(runErr).Debug("Scrape run failed", "command", command)
		return runErr
	}

	runLog.Info("Scrape run finished", "command", command, "records", n)
	return a.write(result)
}

func parseID(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return v, nil
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		v, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, v)
	}
	return ids, nil
}
