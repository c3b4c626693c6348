package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/internal/logging"
	"library-catalog/library"
)

// seedBooks maps ISBN -> book.
var seedBooks = map[string]library.Book{
	"9780441013593": library.NewBook("Dune", "Frank Herbert", 1965, 412, "Ace", "9780441013593"),
	"9780451524935": library.NewBook("1984", "George Orwell", 1949, 328, "Signet Classics", "9780451524935"),
	"9780451526342": library.NewBook("Animal Farm", "George Orwell", 1945, 140, "Signet Classics", "9780451526342"),
	"9780547928210": library.NewBook("The Fellowship of the Ring", "J.R.R. Tolkien", 1954, 432, "Mariner Books", "9780547928210"),
	"9780547928203": library.NewBook("The Two Towers", "J.R.R. Tolkien", 1954, 352, "Mariner Books", "9780547928203"),
	"9780547928197": library.NewBook("The Return of the King", "J.R.R. Tolkien", 1955, 432, "Mariner Books", "9780547928197"),
	"9781590302255": library.NewBook("The Art of War", "Sun Tzu", 2005, 273, "Shambhala", "9781590302255"),
	"9780140449266": library.NewBook("The Three Musketeers", "Alexandre Dumas", 2006, 720, "Penguin Classics", "9780140449266"),
}

var seedMagazines = []library.Magazine{
	library.NewMagazine("National Geographic", "English", 1, 10, 2024, "National Geographic Society"),
	library.NewMagazine("Wiedza i Życie", "Polish", 15, 3, 2023, "Prószyński Media"),
	library.NewMagazine("Der Spiegel", "German", 7, 6, 2024, "Spiegel-Verlag"),
}

var seedUsers = []*library.User{
	library.NewUser("Anna", "Kowalska", "90010112345"),
	library.NewUser("Jan", "Nowak", "85050567890"),
	library.NewUser("Maria", "Wiśniewska", "78121298765"),
}

func main() {
	var backendFlag, dir string
	cmd := &cobra.Command{
		Use:          "seed_catalog",
		Short:        "Write a sample catalog with the chosen backend",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seed(backendFlag, dir)
		},
	}
	cmd.Flags().StringVar(&backendFlag, "backend", "csv", "data format to write: csv or serial")
	cmd.Flags().StringVar(&dir, "data-dir", ".", "directory for the catalog files")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func seed(backendFlag, dir string) error {
	log, logCloser := logging.NewLoggerFromConfig(logging.DefaultConfig())
	defer logCloser.Close()

	opts := library.DefaultStorageOptions(dir)

	// Clean up any existing catalog files
	fmt.Println("Cleaning up existing catalog files...")
	for _, name := range []string{opts.PublicationsFile, opts.UsersFile, opts.SnapshotFile, opts.SnapshotFile + ".tmp"} {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("Warning: Could not remove %s: %v\n", path, err)
		}
	}

	backend, kind, err := library.SelectBackend(backendFlag, opts)
	if err != nil {
		return err
	}

	c := library.NewCatalog()
	successCount, errorCount := 0, 0
	add := func(what string, err error) {
		if err != nil {
			fmt.Printf("ERROR - %s: %v\n", what, err)
			errorCount++
			return
		}
		successCount++
	}

	for _, b := range seedBooks {
		add(b.Title, c.AddPublication(b))
	}
	for _, m := range seedMagazines {
		add(m.Title, c.AddPublication(m))
	}
	for _, u := range seedUsers {
		add(u.Pesel, c.AddUser(u))
	}

	// Give the first user some circulation history.
	if u, ok := c.FindUser(seedUsers[0].Pesel); ok {
		dune, _ := c.FindPublicationByTitle("Dune")
		orwell, _ := c.FindPublicationByTitle("1984")
		for _, p := range []library.Publication{dune, orwell} {
			if err := u.Borrow(p); err != nil {
				return fmt.Errorf("borrow seed publication: %w", err)
			}
		}
		u.Return(orwell)
	}

	if err := backend.Export(c); err != nil {
		log.Error().Err(err).Msg("Export failed")
		return err
	}

	fmt.Printf("\nSeed complete (%s)!\n", kind)
	fmt.Printf("Successfully added: %d entries\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	fmt.Println("\nPublications:")
	fmt.Printf("%-10s %-40s %s\n", "Type", "Title", "Publisher")
	fmt.Println(strings.Repeat("-", 80))
	for _, p := range c.SortedPublications(library.ByTitle) {
		fmt.Printf("%-10s %-40s %s\n", p.Type(), p.Info().Title, p.Info().Publisher)
	}
	return nil
}
