package library

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Catalog is the in-memory store of publications keyed by title and users
// keyed by national identifier. It is not safe for concurrent use.
type Catalog struct {
	publications map[string]Publication
	users        map[string]*User
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		publications: make(map[string]Publication),
		users:        make(map[string]*User),
	}
}

// ---------------------------------------------------------------------------
// Publications
// ---------------------------------------------------------------------------

// AddPublication inserts p unless a publication with the same title exists.
// p must be a Book or Magazine value.
func (c *Catalog) AddPublication(p Publication) error {
	if err := validate.checkPublication(p); err != nil {
		return err
	}
	title := p.Info().Title
	if _, exists := c.publications[title]; exists {
		return &DuplicateError{Entity: "publication", Key: title}
	}
	c.publications[title] = p
	return nil
}

// RemovePublication deletes the publication stored under p's title only when
// the stored value equals p field for field. It reports whether anything was
// removed.
func (c *Catalog) RemovePublication(p Publication) bool {
	title := p.Info().Title
	stored, ok := c.publications[title]
	if !ok || stored != p {
		return false
	}
	delete(c.publications, title)
	return true
}

// FindPublicationByTitle looks up a publication by exact title.
func (c *Catalog) FindPublicationByTitle(title string) (Publication, bool) {
	p, ok := c.publications[title]
	return p, ok
}

// SortedPublications returns the publications ordered by cmp. The catalog
// itself is not reordered.
func (c *Catalog) SortedPublications(cmp func(a, b Publication) int) []Publication {
	return slices.SortedStableFunc(maps.Values(c.publications), cmp)
}

// PublicationCount returns the number of stored publications.
func (c *Catalog) PublicationCount() int { return len(c.publications) }

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// AddUser registers u unless its national identifier is already taken. The
// catalog keeps its own copy of u.
func (c *Catalog) AddUser(u *User) error {
	if err := validate.checkUser(u); err != nil {
		return err
	}
	if _, exists := c.users[u.Pesel]; exists {
		return &DuplicateError{Entity: "user", Key: u.Pesel}
	}
	c.users[u.Pesel] = u.clone()
	return nil
}

// FindUser looks up a user by national identifier. The returned pointer is
// the stored entry.
func (c *Catalog) FindUser(pesel string) (*User, bool) {
	u, ok := c.users[pesel]
	return u, ok
}

// SortedUsers returns the users ordered by cmp.
func (c *Catalog) SortedUsers(cmp func(a, b *User) int) []*User {
	return slices.SortedStableFunc(maps.Values(c.users), cmp)
}

// UserCount returns the number of registered users.
func (c *Catalog) UserCount() int { return len(c.users) }

// Equal reports whether both catalogs hold structurally equal entities.
func (c *Catalog) Equal(o *Catalog) bool {
	if !maps.Equal(c.publications, o.publications) {
		return false
	}
	return maps.EqualFunc(c.users, o.users, (*User).Equal)
}

// ---------------------------------------------------------------------------
// Orderings
// ---------------------------------------------------------------------------

// ByTitle orders publications by title, ignoring case.
func ByTitle(a, b Publication) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(a.Info().Title), strings.ToLower(b.Info().Title)),
		strings.Compare(a.Info().Title, b.Info().Title),
	)
}

// ByLastName orders users by last name, ignoring case, then by identifier.
func ByLastName(a, b *User) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)),
		strings.Compare(a.Pesel, b.Pesel),
	)
}

// OfType keeps only publications of the given type, preserving order.
func OfType(pubs []Publication, t PublicationType) []Publication {
	var out []Publication
	for _, p := range pubs {
		if p.Type() == t {
			out = append(out, p)
		}
	}
	return out
}
