package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"library-catalog/library"
)

func newShowCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, _, err := a.configuredBackend()
			if err != nil {
				return err
			}
			c, err := backend.Import()
			if err != nil {
				return err
			}
			switch strings.ToLower(output) {
			case "yaml", "yml":
				return writeYAML(cmd.OutOrStdout(), c)
			case "table", "":
				writeTable(cmd.OutOrStdout(), c)
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want table or yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Copy the catalog from the configured backend into another one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, srcKind, err := a.configuredBackend()
			if err != nil {
				return err
			}
			dst, dstKind, err := library.SelectBackend(to, a.cfg.Storage)
			if err != nil {
				return err
			}
			if srcKind == dstKind {
				return fmt.Errorf("source and target backend are both %s", srcKind)
			}

			c, err := src.Import()
			if err != nil {
				return err
			}
			if err := dst.Export(c); err != nil {
				return err
			}
			a.log.Info().
				Str("from", string(srcKind)).
				Str("to", string(dstKind)).
				Int("publications", c.PublicationCount()).
				Int("users", c.UserCount()).
				Msg("Converted catalog")
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d publications and %d users from %s to %s.\n",
				c.PublicationCount(), c.UserCount(), srcKind, dstKind)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "target backend: csv or serial")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// configuredBackend resolves the backend without prompting; CSV is the
// default when nothing is configured.
func (a *app) configuredBackend() (library.Backend, library.Kind, error) {
	token := a.cfg.Backend
	if token == "" {
		token = string(library.KindCSV)
	}
	return library.SelectBackend(token, a.cfg.Storage)
}

// ------------------ Rendering ------------------

type userView struct {
	FirstName string   `yaml:"first_name"`
	LastName  string   `yaml:"last_name"`
	Pesel     string   `yaml:"pesel"`
	Borrowed  []string `yaml:"borrowed,omitempty"`
	History   []string `yaml:"history,omitempty"`
}

type catalogView struct {
	Books     []library.Publication `yaml:"books"`
	Magazines []library.Publication `yaml:"magazines"`
	Users     []userView            `yaml:"users"`
}

func titles(pubs []library.Publication) []string {
	out := make([]string, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, p.Info().Title)
	}
	return out
}

func newCatalogView(c *library.Catalog) catalogView {
	pubs := c.SortedPublications(library.ByTitle)
	view := catalogView{
		Books:     library.OfType(pubs, library.TypeBook),
		Magazines: library.OfType(pubs, library.TypeMagazine),
	}
	for _, u := range c.SortedUsers(library.ByLastName) {
		view.Users = append(view.Users, userView{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Pesel:     u.Pesel,
			Borrowed:  titles(u.Borrowed),
			History:   titles(u.History),
		})
	}
	return view
}

func writeYAML(w io.Writer, c *library.Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newCatalogView(c)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeTable(w io.Writer, c *library.Catalog) {
	view := newCatalogView(c)

	fmt.Fprintf(w, "Books (%d)\n", len(view.Books))
	for _, p := range view.Books {
		fmt.Fprintln(w, "  "+describe(p))
	}
	fmt.Fprintf(w, "Magazines (%d)\n", len(view.Magazines))
	for _, p := range view.Magazines {
		fmt.Fprintln(w, "  "+describe(p))
	}
	fmt.Fprintf(w, "Users (%d)\n", len(view.Users))
	for _, u := range view.Users {
		fmt.Fprintf(w, "  %-15s %s %s  borrowed: %s\n",
			u.Pesel, u.FirstName, u.LastName, strings.Join(u.Borrowed, ", "))
	}
}
