package library

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// LibraryManager is a thin façade over the Catalog and its Backend, keeping
// CLI code simple. It owns the catalog for the life of the process.
type LibraryManager struct {
	catalog *Catalog
	backend Backend
	log     zerolog.Logger
	loadErr error
}

// NewLibraryManager imports the catalog through backend. When the import
// fails for any reason the manager starts from an empty catalog; the failure
// stays available through LoadError.
func NewLibraryManager(backend Backend, log zerolog.Logger) *LibraryManager {
	lm := &LibraryManager{backend: backend, log: log}

	c, err := backend.Import()
	if err != nil {
		log.Warn().Err(err).Msg("Import failed, starting with an empty catalog")
		lm.catalog = NewCatalog()
		lm.loadErr = err
		return lm
	}

	log.Info().
		Int("publications", c.PublicationCount()).
		Int("users", c.UserCount()).
		Msg("Imported catalog")
	lm.catalog = c
	return lm
}

// LoadError returns the import error that forced an empty start, if any.
func (lm *LibraryManager) LoadError() error { return lm.loadErr }

// Catalog exposes the managed catalog.
func (lm *LibraryManager) Catalog() *Catalog { return lm.catalog }

// Close exports the catalog through the same backend it was loaded from.
func (lm *LibraryManager) Close() error {
	if err := lm.backend.Export(lm.catalog); err != nil {
		lm.log.Error().Err(err).Msg("Export failed")
		return err
	}
	lm.log.Info().
		Int("publications", lm.catalog.PublicationCount()).
		Int("users", lm.catalog.UserCount()).
		Msg("Exported catalog")
	return nil
}

// ------------------ Publication helpers ------------------

func (lm *LibraryManager) AddBook(b Book) error         { return lm.addPublication(b) }
func (lm *LibraryManager) AddMagazine(m Magazine) error { return lm.addPublication(m) }

func (lm *LibraryManager) addPublication(p Publication) error {
	if err := lm.catalog.AddPublication(p); err != nil {
		return err
	}
	lm.log.Debug().Str("type", string(p.Type())).Str("title", p.Info().Title).Msg("Added publication")
	return nil
}

// RemovePublication deletes p only when an identical publication is stored.
func (lm *LibraryManager) RemovePublication(p Publication) bool {
	removed := lm.catalog.RemovePublication(p)
	lm.log.Debug().Str("title", p.Info().Title).Bool("removed", removed).Msg("Remove publication")
	return removed
}

func (lm *LibraryManager) FindPublication(title string) (Publication, bool) {
	return lm.catalog.FindPublicationByTitle(title)
}

// Books returns all books ordered by title, ignoring case.
func (lm *LibraryManager) Books() []Publication {
	return OfType(lm.catalog.SortedPublications(ByTitle), TypeBook)
}

// Magazines returns all magazines ordered by title, ignoring case.
func (lm *LibraryManager) Magazines() []Publication {
	return OfType(lm.catalog.SortedPublications(ByTitle), TypeMagazine)
}

// ------------------ User helpers ------------------

func (lm *LibraryManager) AddUser(u *User) error {
	if err := lm.catalog.AddUser(u); err != nil {
		return err
	}
	lm.log.Debug().Str("pesel", u.Pesel).Msg("Added user")
	return nil
}

// Users returns all users ordered by last name, ignoring case.
func (lm *LibraryManager) Users() []*User {
	return lm.catalog.SortedUsers(ByLastName)
}

// ------------------ Circulation ------------------

// Borrow lends the publication titled title to the user with pesel.
func (lm *LibraryManager) Borrow(pesel, title string) error {
	u, p, err := lm.lookup(pesel, title)
	if err != nil {
		return err
	}
	if err := u.Borrow(p); err != nil {
		return err
	}
	lm.log.Debug().Str("pesel", pesel).Str("title", title).Msg("Borrowed publication")
	return nil
}

// Return takes the publication titled title back from the user with pesel.
// When the stored publication is not the copy the user holds (it was removed,
// or replaced under the same title) the borrowed list is matched by title.
// It reports false when the user was not holding it.
func (lm *LibraryManager) Return(pesel, title string) (bool, error) {
	u, ok := lm.catalog.FindUser(pesel)
	if !ok {
		return false, fmt.Errorf("no user with national identifier %s", pesel)
	}
	p, stored := lm.catalog.FindPublicationByTitle(title)
	returned := stored && u.Return(p)
	if !returned {
		i := slices.IndexFunc(u.Borrowed, func(b Publication) bool { return b.Info().Title == title })
		switch {
		case i >= 0:
			returned = u.Return(u.Borrowed[i])
		case !stored:
			return false, fmt.Errorf("no publication titled %q", title)
		}
	}
	lm.log.Debug().Str("pesel", pesel).Str("title", title).Bool("returned", returned).Msg("Return publication")
	return returned, nil
}

func (lm *LibraryManager) lookup(pesel, title string) (*User, Publication, error) {
	u, ok := lm.catalog.FindUser(pesel)
	if !ok {
		return nil, nil, fmt.Errorf("no user with national identifier %s", pesel)
	}
	p, ok := lm.catalog.FindPublicationByTitle(title)
	if !ok {
		return nil, nil, fmt.Errorf("no publication titled %q", title)
	}
	return u, p, nil
}
