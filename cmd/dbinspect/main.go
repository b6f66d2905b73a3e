// Command dbinspect prints the tables of the public schema and their columns.
//
// It reads the same configuration as the service, so INVENTORY_DATABASE_URL or
// database.url in config.yaml selects the database.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/abgdnv/grocerytracker/internal/store"
	"github.com/abgdnv/grocerytracker/pkg/bootstrap"
	"github.com/abgdnv/grocerytracker/pkg/config"
	"github.com/abgdnv/grocerytracker/pkg/config/configloader"
)

const serviceName = "inventory"

// inspectConfig is the subset of the service configuration the tool needs.
type inspectConfig struct {
	Database config.DatabaseConfig `koanf:"database"`
}

func (c *inspectConfig) Validate() error {
	return c.Database.Validate()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout); err != nil {
		log.Printf("dbinspect failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	cfg, err := configloader.Load[*inspectConfig](serviceName)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	tables, err := store.DescribeSchema(ctx, dbPool)
	if err != nil {
		return err
	}
	return printTables(out, tables)
}

func printTables(out io.Writer, tables []store.Table) error {
	if len(tables) == 0 {
		_, err := fmt.Fprintln(out, "no tables found in schema public")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range tables {
		fmt.Fprintf(tw, "Table: %s\n", t.Name)
		for _, c := range t.Columns {
			nullable := "NOT NULL"
			if c.Nullable {
				nullable = "NULL"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Name, c.DataType, nullable)
		}
	}
	return tw.Flush()
}
