package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// seedCatalog is the part of the catalog service the seed command needs.
type seedCatalog interface {
	Create(ctx context.Context, in catalog.BookInput) (*entities.Book, error)
	GetBySlug(ctx context.Context, slug string) (*entities.Book, error)
}

type SeedCommand struct {
	DatabasePath string
	Force        bool
	Timeout      time.Duration

	out io.Writer
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{out: os.Stdout}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Force, "force", false, "Insert sample books even when their slug already exists")
	fs.DurationVar(&cmd.Timeout, "timeout", 30*time.Second, "Upper bound for the whole run")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Insert the sample book catalog.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -db ./bookshelf.db -force\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SeedCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	conn := database.NewConnector(database.SQLiteDialer(config.Database{
		Path:           cmd.DatabasePath,
		ConnectTimeout: cmd.Timeout,
	}, logger.Warn))
	defer conn.Close()

	repo := books.NewRepository(conn, cmd.Timeout)
	created, skipped, err := seed(ctx, catalog.NewService(repo), cmd.Force, cmd.out)
	if err != nil {
		return err
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	fmt.Fprintf(cmd.out, "Seeding complete: %d created, %d skipped, %d books in catalog\n", created, skipped, total)
	return nil
}

// seed writes every sample book through the catalog so slugs follow the
// usual assignment rules.
func seed(ctx context.Context, svc seedCatalog, force bool, out io.Writer) (created, skipped int, err error) {
	for _, s := range sampleBooks {
		if !force {
			existing, err := svc.GetBySlug(ctx, catalog.Slugify(s.Title))
			switch {
			case err == nil:
				fmt.Fprintf(out, "  skip   %-28s (exists as %s)\n", s.Title, existing.Slug)
				skipped++
				continue
			case !errors.Is(err, catalog.ErrNotFound):
				return created, skipped, fmt.Errorf("check %q: %w", s.Title, err)
			}
		}

		book, err := svc.Create(ctx, s.input())
		if err != nil {
			return created, skipped, fmt.Errorf("create %q: %w", s.Title, err)
		}
		fmt.Fprintf(out, "  create %-28s -> %s\n", s.Title, book.Slug)
		created++
	}
	return created, skipped, nil
}
