package library

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, kind Kind) (*LibraryManager, Backend) {
	t.Helper()
	b, err := NewBackend(kind, DefaultStorageOptions(t.TempDir()))
	require.NoError(t, err)
	return NewLibraryManager(b, zerolog.Nop()), b
}

func TestManagerFallsBackToEmptyCatalog(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			var logs bytes.Buffer
			b, err := NewBackend(kind, DefaultStorageOptions(t.TempDir()))
			require.NoError(t, err)

			mgr := NewLibraryManager(b, zerolog.New(&logs))
			require.Error(t, mgr.LoadError())
			assert.True(t, IsNotFound(mgr.LoadError()))
			assert.Zero(t, mgr.Catalog().PublicationCount())
			assert.Zero(t, mgr.Catalog().UserCount())
			assert.Contains(t, logs.String(), "Import failed")
		})
	}
}

func TestManagerCloseExportsAndReloads(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			mgr, b := newManager(t, kind)
			require.NoError(t, mgr.AddBook(dune()))
			require.NoError(t, mgr.AddMagazine(natGeo()))
			require.NoError(t, mgr.AddUser(NewUser("Anna", "Kowalska", "1")))
			require.NoError(t, mgr.Close())

			reloaded := NewLibraryManager(b, zerolog.Nop())
			require.NoError(t, reloaded.LoadError())
			assert.True(t, mgr.Catalog().Equal(reloaded.Catalog()))
		})
	}
}

func TestManagerViews(t *testing.T) {
	mgr, _ := newManager(t, KindCSV)
	require.NoError(t, mgr.AddBook(NewBook("b", "A", 1, 1, "P", "1")))
	require.NoError(t, mgr.AddBook(NewBook("A", "A", 1, 1, "P", "2")))
	require.NoError(t, mgr.AddMagazine(natGeo()))

	books := mgr.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Info().Title)
	assert.Equal(t, "b", books[1].Info().Title)
	assert.Equal(t, []Publication{natGeo()}, mgr.Magazines())

	assert.True(t, IsDuplicate(mgr.AddBook(NewBook("b", "Other", 2, 2, "Q", "3"))))

	p, ok := mgr.FindPublication("National Geographic")
	require.True(t, ok)
	assert.Equal(t, Publication(natGeo()), p)

	assert.False(t, mgr.RemovePublication(NewBook("b", "Other", 2, 2, "Q", "3")))
	assert.True(t, mgr.RemovePublication(NewBook("b", "A", 1, 1, "P", "1")))
	assert.Len(t, mgr.Books(), 1)
}

func TestManagerBorrowAndReturn(t *testing.T) {
	mgr, b := newManager(t, KindSerial)
	require.NoError(t, mgr.AddBook(dune()))
	require.NoError(t, mgr.AddUser(NewUser("Anna", "Kowalska", "1")))

	require.NoError(t, mgr.Borrow("1", "Dune"))
	assert.Error(t, mgr.Borrow("2", "Dune"))
	assert.Error(t, mgr.Borrow("1", "Missing"))

	ok, err := mgr.Return("1", "Dune")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.Return("1", "Dune")
	require.NoError(t, err)
	assert.False(t, ok, "already returned")

	require.NoError(t, mgr.Borrow("1", "Dune"))
	require.NoError(t, mgr.Close())

	reloaded := NewLibraryManager(b, zerolog.Nop())
	require.NoError(t, reloaded.LoadError())
	users := reloaded.Users()
	require.Len(t, users, 1)
	assert.Equal(t, []Publication{dune()}, users[0].Borrowed)
	assert.Equal(t, []Publication{dune()}, users[0].History)
}

func TestManagerReturnAfterRemoval(t *testing.T) {
	mgr, _ := newManager(t, KindCSV)
	require.NoError(t, mgr.AddBook(dune()))
	require.NoError(t, mgr.AddUser(NewUser("Anna", "Kowalska", "1")))
	require.NoError(t, mgr.Borrow("1", "Dune"))
	require.True(t, mgr.RemovePublication(dune()))

	ok, err := mgr.Return("1", "Dune")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = mgr.Return("1", "Dune")
	assert.Error(t, err, "neither stored nor borrowed")
	_, err = mgr.Return("2", "Dune")
	assert.Error(t, err)
}

func TestManagerReturnAfterTitleReplaced(t *testing.T) {
	mgr, _ := newManager(t, KindSerial)
	require.NoError(t, mgr.AddBook(dune()))
	require.NoError(t, mgr.AddUser(NewUser("Anna", "Kowalska", "1")))
	require.NoError(t, mgr.Borrow("1", "Dune"))

	require.True(t, mgr.RemovePublication(dune()))
	reissue := NewBook("Dune", "Frank Herbert", 2005, 896, "Ace", "9780441013593")
	require.NoError(t, mgr.AddBook(reissue))

	ok, err := mgr.Return("1", "Dune")
	require.NoError(t, err)
	assert.True(t, ok, "the copy on loan is returned even though the stored one differs")

	u := mgr.Users()[0]
	assert.Empty(t, u.Borrowed)
	assert.Equal(t, []Publication{dune()}, u.History)

	ok, err = mgr.Return("1", "Dune")
	require.NoError(t, err)
	assert.False(t, ok)
}
