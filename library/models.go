package library

import "slices"

// PublicationType is the discriminator written as the first field of an
// encoded publication.
type PublicationType string

const (
	TypeBook     PublicationType = "Book"
	TypeMagazine PublicationType = "Magazine"
)

// Publication is either a Book or a Magazine. Both are plain comparable
// values, so two Publications are equal under == exactly when they have the
// same variant and identical fields.
type Publication interface {
	Type() PublicationType
	Info() Header
}

// Header holds the attributes shared by every publication.
type Header struct {
	Title     string `json:"title" yaml:"title" validate:"required,record"`
	Publisher string `json:"publisher" yaml:"publisher" validate:"record"`
	Year      int    `json:"year" yaml:"year" validate:"gte=0"`
}

// Info returns the shared attributes.
func (h Header) Info() Header { return h }

// Book is a publication with an author and an ISBN.
type Book struct {
	Header `yaml:",inline"`
	Author string `json:"author" yaml:"author" validate:"record"`
	Pages  int    `json:"pages" yaml:"pages" validate:"gte=0"`
	ISBN   string `json:"isbn" yaml:"isbn" validate:"record"`
}

func (Book) Type() PublicationType { return TypeBook }

// NewBook builds a Book value.
func NewBook(title, author string, year, pages int, publisher, isbn string) Book {
	return Book{
		Header: Header{Title: title, Publisher: publisher, Year: year},
		Author: author,
		Pages:  pages,
		ISBN:   isbn,
	}
}

// Magazine is a dated periodical issue.
type Magazine struct {
	Header   `yaml:",inline"`
	Month    int    `json:"month" yaml:"month" validate:"gte=0"`
	Day      int    `json:"day" yaml:"day" validate:"gte=0"`
	Language string `json:"language" yaml:"language" validate:"record"`
}

func (Magazine) Type() PublicationType { return TypeMagazine }

// NewMagazine builds a Magazine value.
func NewMagazine(title, language string, day, month, year int, publisher string) Magazine {
	return Magazine{
		Header:   Header{Title: title, Publisher: publisher, Year: year},
		Month:    month,
		Day:      day,
		Language: language,
	}
}

// User is a registered library user keyed by national identifier (PESEL).
// Borrowed holds publications currently lent out; History is append-only.
type User struct {
	FirstName string        `json:"first_name" yaml:"first_name" validate:"record"`
	LastName  string        `json:"last_name" yaml:"last_name" validate:"record"`
	Pesel     string        `json:"pesel" yaml:"pesel" validate:"required,record"`
	Borrowed  []Publication `json:"-" yaml:"-"`
	History   []Publication `json:"-" yaml:"-"`
}

// NewUser builds a user with empty borrow and history lists.
func NewUser(firstName, lastName, pesel string) *User {
	return &User{FirstName: firstName, LastName: lastName, Pesel: pesel}
}

// Borrow appends p to the borrowed list. Only valid Book and Magazine values
// are accepted.
func (u *User) Borrow(p Publication) error {
	if err := validate.checkPublication(p); err != nil {
		return err
	}
	u.Borrowed = append(u.Borrowed, p)
	return nil
}

// Return moves the first borrowed publication equal to p to the end of the
// history. It reports false, changing nothing, when p is not borrowed.
func (u *User) Return(p Publication) bool {
	i := slices.Index(u.Borrowed, p)
	if i < 0 {
		return false
	}
	u.Borrowed = slices.Delete(u.Borrowed, i, i+1)
	u.History = append(u.History, p)
	return true
}

// Equal reports structural equality, including both publication lists. A nil
// list and an empty list are equal.
func (u *User) Equal(o *User) bool {
	if u == nil || o == nil {
		return u == o
	}
	return u.FirstName == o.FirstName &&
		u.LastName == o.LastName &&
		u.Pesel == o.Pesel &&
		slices.Equal(u.Borrowed, o.Borrowed) &&
		slices.Equal(u.History, o.History)
}

// clone returns a deep copy so stored users cannot be mutated through
// pointers handed out before they were added.
func (u *User) clone() *User {
	c := *u
	c.Borrowed = slices.Clone(u.Borrowed)
	c.History = slices.Clone(u.History)
	return &c
}
