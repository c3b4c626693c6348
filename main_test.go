package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-catalog/internal/config"
	"library-catalog/internal/logging"
	"library-catalog/library"
)

func testApp(t *testing.T, backend string) (*app, string) {
	t.Helper()
	dir := t.TempDir()
	return &app{
		cfg: &config.Config{
			Backend: backend,
			Storage: library.DefaultStorageOptions(dir),
		},
		log: logging.Nop,
	}, dir
}

func lines(l ...string) string { return strings.Join(l, "\n") + "\n" }

func TestMenuAddListAndSave(t *testing.T) {
	a, dir := testApp(t, "csv")
	input := lines(
		"1", "Dune", "Herbert", "Ace", "9780441013593", "1965", "412",
		"2", "Wired", "Conde Nast", "English", "2024", "5", "17",
		"7", "Anna", "Kowalska", "90010112345",
		"3",
		"9", "Wired",
		"0",
	)
	var out bytes.Buffer
	require.NoError(t, a.runMenu(strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "Initialized a new catalog.")
	assert.Contains(t, text, `Added book "Dune".`)
	assert.Contains(t, text, `Added magazine "Wired".`)
	assert.Contains(t, text, "Added user Anna Kowalska.")
	assert.Contains(t, text, "Saved data to storage.")

	pubs, err := os.ReadFile(filepath.Join(dir, library.DefaultPublicationsFile))
	require.NoError(t, err)
	assert.Equal(t, lines(
		"Book;Dune;Ace;1965;Herbert;412;9780441013593",
		"Magazine;Wired;Conde Nast;2024;5;17;English",
	), string(pubs))

	users, err := os.ReadFile(filepath.Join(dir, library.DefaultUsersFile))
	require.NoError(t, err)
	assert.Equal(t, "Anna;Kowalska;90010112345\n", string(users))
}

func TestMenuReloadsAndDeletes(t *testing.T) {
	a, _ := testApp(t, "serial")

	first := lines("1", "Dune", "Herbert", "Ace", "978", "1965", "412", "0")
	require.NoError(t, a.runMenu(strings.NewReader(first), &bytes.Buffer{}))

	// Deleting with a different author leaves the book in place; the exact
	// match removes it.
	second := lines(
		"5", "Dune", "Someone", "Ace", "978", "1965", "412",
		"5", "Dune", "Herbert", "Ace", "978", "1965", "412",
		"0",
	)
	var out bytes.Buffer
	require.NoError(t, a.runMenu(strings.NewReader(second), &out))
	assert.Contains(t, out.String(), "Imported data from storage.")
	assert.Contains(t, out.String(), "No such book.")
	assert.Contains(t, out.String(), "Book deleted.")
}

func TestMenuRejectsBadInput(t *testing.T) {
	a, _ := testApp(t, "csv")
	input := lines(
		"abc",
		"42",
		"1", "Dune", "Herbert", "Ace", "978", "nineteen",
		"1", "Dune", "Herbert", "Ace", "978", "1965", "412",
		"1", "Dune", "Other", "Ace", "978", "1965", "412",
		"9", "Missing",
		"0",
	)
	var out bytes.Buffer
	require.NoError(t, a.runMenu(strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, "That is not a number")
	assert.Contains(t, text, "No option with id 42.")
	assert.Contains(t, text, "Could not create the book")
	assert.Contains(t, text, "already exists")
	assert.Contains(t, text, `No publication titled "Missing".`)
}

func TestMenuBorrowReturn(t *testing.T) {
	a, _ := testApp(t, "serial")
	input := lines(
		"1", "Dune", "Herbert", "Ace", "978", "1965", "412",
		"7", "Anna", "Kowalska", "1",
		"10", "1", "Dune",
		"11", "1", "Dune",
		"11", "1", "Dune",
		"0",
	)
	var out bytes.Buffer
	require.NoError(t, a.runMenu(strings.NewReader(input), &out))

	text := out.String()
	assert.Contains(t, text, `"Dune" lent to 1.`)
	assert.Contains(t, text, `"Dune" returned by 1.`)
	assert.Contains(t, text, `User 1 has not borrowed "Dune".`)
}

func TestMenuUnsupportedBackend(t *testing.T) {
	a, _ := testApp(t, "xyz")
	err := a.runMenu(strings.NewReader("0\n"), &bytes.Buffer{})
	require.Error(t, err)
	assert.ErrorIs(t, err, library.ErrUnsupportedBackendKind)
	assert.Contains(t, err.Error(), "xyz")
}

func TestShowAndConvert(t *testing.T) {
	dir := t.TempDir()
	c := library.NewCatalog()
	require.NoError(t, c.AddPublication(library.NewBook("Dune", "Herbert", 1965, 412, "Ace", "978")))
	u := library.NewUser("Anna", "Kowalska", "1")
	require.NoError(t, u.Borrow(library.NewBook("Dune", "Herbert", 1965, 412, "Ace", "978")))
	require.NoError(t, c.AddUser(u))
	require.NoError(t, library.NewSnapshotBackend(library.DefaultStorageOptions(dir)).Export(c))

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetArgs(append(args, "--data-dir", dir, "--log-level", "error"))
		require.NoError(t, root.Execute())
		return out.String()
	}

	yamlOut := run("show", "--backend", "serial", "-o", "yaml")
	assert.Contains(t, yamlOut, "title: Dune")
	assert.Contains(t, yamlOut, "pesel: \"1\"")
	assert.Contains(t, yamlOut, "borrowed:")

	convertOut := run("convert", "--backend", "serial", "--to", "csv")
	assert.Contains(t, convertOut, "Converted 1 publications and 1 users from serial to csv.")
	assert.FileExists(t, filepath.Join(dir, library.DefaultPublicationsFile))

	table := run("show", "--backend", "csv")
	assert.Contains(t, table, "Books (1)")
	assert.Contains(t, table, "Users (1)")
}

func TestLogFileClosedAfterRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIBRARY_LOG_OUTPUT", filepath.Join(dir, "library.log"))

	a := newApp()
	root := a.rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"show", "--backend", "csv", "--data-dir", dir})
	require.Error(t, root.Execute(), "nothing stored yet")

	f, ok := a.logCloser.(*os.File)
	require.True(t, ok, "log output goes to the configured file")
	a.closeLog()
	assert.Nil(t, a.logCloser)
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
	assert.FileExists(t, filepath.Join(dir, "library.log"))
}
