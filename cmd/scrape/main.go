// Package main provides the scrape command line tool, which looks up
// editions, works and authors and prints them as JSON or YAML.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/catalog-scraper/internal/config"
	"github.com/listenupapp/catalog-scraper/internal/di"
	"github.com/listenupapp/catalog-scraper/internal/di/providers"
	"github.com/listenupapp/catalog-scraper/internal/logger"
	"github.com/listenupapp/catalog-scraper/internal/service"
	"github.com/listenupapp/catalog-scraper/internal/store/sqlite"
)

// app holds what subcommands share once configuration is loaded.
type app struct {
	out    io.Writer
	format string

	injector *do.RootScope
	catalog  *service.CatalogService
	records  *sqlite.Store // nil unless --records-db is set
	log      *logger.Logger
}

func newRootCmd(out io.Writer) (*cobra.Command, *app) {
	a := &app{out: out}

	fs := flag.NewFlagSet("scrape", flag.ContinueOnError)
	flags := config.RegisterFlags(fs)

	root := &cobra.Command{
		Use:           "scrape",
		Short:         "Scrape book catalog records from a metadata provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(flags)
		},
	}
	root.SetOut(out)
	root.PersistentFlags().AddGoFlagSet(fs)
	root.PersistentFlags().StringVar(&a.format, "format", formatJSON, "Output format (json, yaml)")

	root.AddCommand(
		newEditionCmd(a),
		newEditionsCmd(a),
		newWorkCmd(a),
		newAuthorCmd(a),
		newAuthorsCmd(a),
		newExpandCmd(a),
		newProvidersCmd(a),
	)
	return root, a
}

// open loads configuration and bootstraps the catalog service.
func (a *app) open(flags *config.Flags) error {
	if a.format != formatJSON && a.format != formatYAML {
		return fmt.Errorf("unsupported format %q (must be json or yaml)", a.format)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	a.injector = di.NewContainerWithConfig(cfg)
	if a.catalog, err = di.BootstrapCatalog(a.injector); err != nil {
		return err
	}
	a.log = do.MustInvoke[*logger.Logger](a.injector)
	a.records = do.MustInvoke[*providers.RecordStoreHandle](a.injector).Store
	return nil
}

// close shuts the container down. Safe to call when open never ran.
func (a *app) close() error {
	if a.injector == nil {
		return nil
	}
	if err := a.injector.Shutdown(); err != nil {
		return err
	}
	return nil
}

func execute(args []string, out io.Writer) error {
	root, a := newRootCmd(out)
	root.SetArgs(args)
	err := root.Execute()
	return errors.Join(err, a.close())
}

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
