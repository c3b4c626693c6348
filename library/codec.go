package library

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldSep separates fields of an encoded record. Embedded separators are not
// escaped.
const fieldSep = ";"

const (
	publicationFields = 7
	userFields        = 3
)

// EncodePublication renders p as one delimited line without a newline.
//
//	Book;title;publisher;year;author;pages;isbn
//	Magazine;title;publisher;year;month;day;language
func EncodePublication(p Publication) string {
	switch v := p.(type) {
	case Book:
		return strings.Join([]string{
			string(TypeBook), v.Title, v.Publisher, strconv.Itoa(v.Year),
			v.Author, strconv.Itoa(v.Pages), v.ISBN,
		}, fieldSep)
	case Magazine:
		return strings.Join([]string{
			string(TypeMagazine), v.Title, v.Publisher, strconv.Itoa(v.Year),
			strconv.Itoa(v.Month), strconv.Itoa(v.Day), v.Language,
		}, fieldSep)
	default:
		panic(fmt.Sprintf("library: unexpected publication type %T", p))
	}
}

// DecodePublication parses a line produced by EncodePublication.
func DecodePublication(line string) (Publication, error) {
	fields := strings.Split(line, fieldSep)
	switch PublicationType(fields[0]) {
	case TypeBook:
		return decodeBook(line, fields)
	case TypeMagazine:
		return decodeMagazine(line, fields)
	default:
		return nil, &UnknownTypeError{Token: fields[0]}
	}
}

func decodeBook(line string, f []string) (Publication, error) {
	if err := checkFieldCount(line, f, publicationFields); err != nil {
		return nil, err
	}
	year, err := atoi(line, "year", f[3])
	if err != nil {
		return nil, err
	}
	pages, err := atoi(line, "pages", f[5])
	if err != nil {
		return nil, err
	}
	return NewBook(f[1], f[4], year, pages, f[2], f[6]), nil
}

func decodeMagazine(line string, f []string) (Publication, error) {
	if err := checkFieldCount(line, f, publicationFields); err != nil {
		return nil, err
	}
	year, err := atoi(line, "year", f[3])
	if err != nil {
		return nil, err
	}
	month, err := atoi(line, "month", f[4])
	if err != nil {
		return nil, err
	}
	day, err := atoi(line, "day", f[5])
	if err != nil {
		return nil, err
	}
	return NewMagazine(f[1], f[6], day, month, year, f[2]), nil
}

// EncodeUser renders u as firstName;lastName;pesel. Borrow lists are not
// part of the text form.
func EncodeUser(u *User) string {
	return strings.Join([]string{u.FirstName, u.LastName, u.Pesel}, fieldSep)
}

// DecodeUser parses a line produced by EncodeUser.
func DecodeUser(line string) (*User, error) {
	f := strings.Split(line, fieldSep)
	if err := checkFieldCount(line, f, userFields); err != nil {
		return nil, err
	}
	return NewUser(f[0], f[1], f[2]), nil
}

func checkFieldCount(line string, f []string, want int) error {
	if len(f) != want {
		return &MalformedRecordError{
			Record: line,
			Err:    fmt.Errorf("want %d fields, got %d", want, len(f)),
		}
	}
	return nil
}

func atoi(line, field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &MalformedRecordError{Record: line, Field: field, Err: err}
	}
	return n, nil
}
