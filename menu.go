package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

type option struct {
	id          int
	description string
}

const (
	optExit = iota
	optAddBook
	optAddMagazine
	optPrintBooks
	optPrintMagazines
	optDeleteBook
	optDeleteMagazine
	optAddUser
	optPrintUsers
	optFindPublication
	optBorrow
	optReturn
)

var options = []option{
	{optExit, "exit"},
	{optAddBook, "add a book"},
	{optAddMagazine, "add a magazine"},
	{optPrintBooks, "list books"},
	{optPrintMagazines, "list magazines"},
	{optDeleteBook, "delete a book"},
	{optDeleteMagazine, "delete a magazine"},
	{optAddUser, "add a user"},
	{optPrintUsers, "list users"},
	{optFindPublication, "find a publication"},
	{optBorrow, "borrow a publication"},
	{optReturn, "return a publication"},
}

// menu drives the numbered option loop over a LibraryManager.
type menu struct {
	sc  *bufio.Scanner
	out io.Writer
	mgr *library.LibraryManager
}

func newMenu(sc *bufio.Scanner, out io.Writer, mgr *library.LibraryManager) *menu {
	return &menu{sc: sc, out: out, mgr: mgr}
}

// loop runs until the exit option is chosen or input ends.
func (m *menu) loop() {
	for {
		m.printOptions()
		opt, ok := m.readOption()
		if !ok || opt == optExit {
			return
		}

		switch opt {
		case optAddBook:
			m.handleAddBook()
		case optAddMagazine:
			m.handleAddMagazine()
		case optPrintBooks:
			m.printPublications(m.mgr.Books(), "No books in the catalog.")
		case optPrintMagazines:
			m.printPublications(m.mgr.Magazines(), "No magazines in the catalog.")
		case optDeleteBook:
			m.handleDeleteBook()
		case optDeleteMagazine:
			m.handleDeleteMagazine()
		case optAddUser:
			m.handleAddUser()
		case optPrintUsers:
			m.printUsers()
		case optFindPublication:
			m.handleFindPublication()
		case optBorrow:
			m.handleBorrow()
		case optReturn:
			m.handleReturn()
		}
	}
}

func (m *menu) printOptions() {
	fmt.Fprintln(m.out, "\nChoose an option:")
	for _, o := range options {
		fmt.Fprintf(m.out, "%d - %s\n", o.id, o.description)
	}
}

// readOption re-prompts until a valid option number is entered. It reports
// false when input ends.
func (m *menu) readOption() (int, bool) {
	for {
		line, ok := m.readLine("> ")
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, "That is not a number, try again.")
			continue
		}
		if n < 0 || n >= len(options) {
			fmt.Fprintf(m.out, "No option with id %d.\n", n)
			continue
		}
		return n, true
	}
}

func (m *menu) readLine(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.sc.Text()), true
}

func (m *menu) readInt(prompt string) (int, bool) {
	s, ok := m.readLine(prompt)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(m.out, "Invalid number: %s\n", s)
		return 0, false
	}
	return n, true
}

// ------------------ Publications ------------------

func (m *menu) readBook() (library.Book, bool) {
	title, ok := m.readLine("Title: ")
	if !ok {
		return library.Book{}, false
	}
	author, ok := m.readLine("Author: ")
	if !ok {
		return library.Book{}, false
	}
	publisher, ok := m.readLine("Publisher: ")
	if !ok {
		return library.Book{}, false
	}
	isbn, ok := m.readLine("ISBN: ")
	if !ok {
		return library.Book{}, false
	}
	year, ok := m.readInt("Year: ")
	if !ok {
		return library.Book{}, false
	}
	pages, ok := m.readInt("Pages: ")
	if !ok {
		return library.Book{}, false
	}
	return library.NewBook(title, author, year, pages, publisher, isbn), true
}

func (m *menu) readMagazine() (library.Magazine, bool) {
	title, ok := m.readLine("Title: ")
	if !ok {
		return library.Magazine{}, false
	}
	publisher, ok := m.readLine("Publisher: ")
	if !ok {
		return library.Magazine{}, false
	}
	language, ok := m.readLine("Language: ")
	if !ok {
		return library.Magazine{}, false
	}
	year, ok := m.readInt("Year: ")
	if !ok {
		return library.Magazine{}, false
	}
	month, ok := m.readInt("Month: ")
	if !ok {
		return library.Magazine{}, false
	}
	day, ok := m.readInt("Day: ")
	if !ok {
		return library.Magazine{}, false
	}
	return library.NewMagazine(title, language, day, month, year, publisher), true
}

func (m *menu) handleAddBook() {
	b, ok := m.readBook()
	if !ok {
		fmt.Fprintln(m.out, "Could not create the book, invalid data.")
		return
	}
	if err := m.mgr.AddBook(b); err != nil {
		fmt.Fprintf(m.out, "Error adding book: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Added book %q.\n", b.Title)
}

func (m *menu) handleAddMagazine() {
	mag, ok := m.readMagazine()
	if !ok {
		fmt.Fprintln(m.out, "Could not create the magazine, invalid data.")
		return
	}
	if err := m.mgr.AddMagazine(mag); err != nil {
		fmt.Fprintf(m.out, "Error adding magazine: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Added magazine %q.\n", mag.Title)
}

func (m *menu) handleDeleteBook() {
	b, ok := m.readBook()
	if !ok {
		fmt.Fprintln(m.out, "Invalid data.")
		return
	}
	if m.mgr.RemovePublication(b) {
		fmt.Fprintln(m.out, "Book deleted.")
	} else {
		fmt.Fprintln(m.out, "No such book.")
	}
}

func (m *menu) handleDeleteMagazine() {
	mag, ok := m.readMagazine()
	if !ok {
		fmt.Fprintln(m.out, "Invalid data.")
		return
	}
	if m.mgr.RemovePublication(mag) {
		fmt.Fprintln(m.out, "Magazine deleted.")
	} else {
		fmt.Fprintln(m.out, "No such magazine.")
	}
}

func (m *menu) handleFindPublication() {
	title, ok := m.readLine("Title: ")
	if !ok {
		return
	}
	p, found := m.mgr.FindPublication(title)
	if !found {
		fmt.Fprintf(m.out, "No publication titled %q.\n", title)
		return
	}
	fmt.Fprintln(m.out, describe(p))
}

func (m *menu) printPublications(pubs []library.Publication, empty string) {
	if len(pubs) == 0 {
		fmt.Fprintln(m.out, empty)
		return
	}
	for _, p := range pubs {
		fmt.Fprintln(m.out, describe(p))
	}
}

// describe renders one publication on a single line.
func describe(p library.Publication) string {
	switch v := p.(type) {
	case library.Book:
		return fmt.Sprintf("%-30s %-20s %-20s %4d %5d pages  ISBN %s",
			truncateString(v.Title, 30), truncateString(v.Author, 20), truncateString(v.Publisher, 20),
			v.Year, v.Pages, v.ISBN)
	case library.Magazine:
		return fmt.Sprintf("%-30s %-20s %04d-%02d-%02d  %s",
			truncateString(v.Title, 30), truncateString(v.Publisher, 20),
			v.Year, v.Month, v.Day, v.Language)
	default:
		return p.Info().Title
	}
}

// ------------------ Users ------------------

func (m *menu) handleAddUser() {
	first, ok := m.readLine("First name: ")
	if !ok {
		return
	}
	last, ok := m.readLine("Last name: ")
	if !ok {
		return
	}
	pesel, ok := m.readLine("PESEL: ")
	if !ok {
		return
	}
	if err := m.mgr.AddUser(library.NewUser(first, last, pesel)); err != nil {
		fmt.Fprintf(m.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "Added user %s %s.\n", first, last)
}

func (m *menu) printUsers() {
	users := m.mgr.Users()
	if len(users) == 0 {
		fmt.Fprintln(m.out, "No users registered.")
		return
	}
	fmt.Fprintf(m.out, "%-15s %-20s %-20s %-8s %s\n", "PESEL", "First name", "Last name", "Borrowed", "Returned")
	fmt.Fprintln(m.out, strings.Repeat("-", 75))
	for _, u := range users {
		fmt.Fprintf(m.out, "%-15s %-20s %-20s %-8d %d\n",
			u.Pesel, truncateString(u.FirstName, 20), truncateString(u.LastName, 20),
			len(u.Borrowed), len(u.History))
	}
}

// ------------------ Circulation ------------------

func (m *menu) handleBorrow() {
	pesel, ok := m.readLine("PESEL: ")
	if !ok {
		return
	}
	title, ok := m.readLine("Title: ")
	if !ok {
		return
	}
	if err := m.mgr.Borrow(pesel, title); err != nil {
		fmt.Fprintf(m.out, "Error borrowing: %v\n", err)
		return
	}
	fmt.Fprintf(m.out, "%q lent to %s.\n", title, pesel)
}

func (m *menu) handleReturn() {
	pesel, ok := m.readLine("PESEL: ")
	if !ok {
		return
	}
	title, ok := m.readLine("Title: ")
	if !ok {
		return
	}
	returned, err := m.mgr.Return(pesel, title)
	if err != nil {
		fmt.Fprintf(m.out, "Error returning: %v\n", err)
		return
	}
	if !returned {
		fmt.Fprintf(m.out, "User %s has not borrowed %q.\n", pesel, title)
		return
	}
	fmt.Fprintf(m.out, "%q returned by %s.\n", title, pesel)
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
