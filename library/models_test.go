package library

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicationEquality(t *testing.T) {
	assert.True(t, Publication(dune()) == Publication(dune()))

	changed := dune()
	changed.Pages++
	assert.False(t, Publication(dune()) == Publication(changed))

	book := NewBook("Same", "", 2000, 0, "P", "")
	mag := NewMagazine("Same", "", 0, 0, 2000, "P")
	assert.False(t, Publication(book) == Publication(mag))
}

func TestUserReturn(t *testing.T) {
	t.Run("borrowed publication moves to history", func(t *testing.T) {
		u := NewUser("Anna", "Kowalska", "1")
		require.NoError(t, u.Borrow(dune()))
		require.NoError(t, u.Borrow(natGeo()))

		assert.True(t, u.Return(dune()))
		assert.Equal(t, []Publication{natGeo()}, u.Borrowed)
		assert.Equal(t, []Publication{dune()}, u.History)
	})

	t.Run("history keeps return order", func(t *testing.T) {
		u := NewUser("Anna", "Kowalska", "1")
		require.NoError(t, u.Borrow(dune()))
		require.NoError(t, u.Borrow(natGeo()))

		assert.True(t, u.Return(natGeo()))
		assert.True(t, u.Return(dune()))
		assert.Empty(t, u.Borrowed)
		assert.Equal(t, []Publication{natGeo(), dune()}, u.History)
	})

	t.Run("only one copy is returned", func(t *testing.T) {
		u := NewUser("Anna", "Kowalska", "1")
		require.NoError(t, u.Borrow(dune()))
		require.NoError(t, u.Borrow(dune()))

		assert.True(t, u.Return(dune()))
		assert.Len(t, u.Borrowed, 1)
		assert.Len(t, u.History, 1)
	})

	t.Run("not borrowed is a no-op", func(t *testing.T) {
		u := NewUser("Anna", "Kowalska", "1")
		require.NoError(t, u.Borrow(natGeo()))

		assert.False(t, u.Return(dune()))
		assert.Equal(t, []Publication{natGeo()}, u.Borrowed)
		assert.Empty(t, u.History)
	})
}

func TestUserEqual(t *testing.T) {
	a := NewUser("Anna", "Kowalska", "1")
	b := NewUser("Anna", "Kowalska", "1")
	assert.True(t, a.Equal(b))

	b.History = []Publication{}
	assert.True(t, a.Equal(b), "nil and empty history compare equal")

	require.NoError(t, b.Borrow(dune()))
	assert.False(t, a.Equal(b))

	var nilUser *User
	assert.False(t, a.Equal(nilUser))
	assert.True(t, nilUser.Equal(nil))
}

func TestUserBorrowRejectsInvalidPublications(t *testing.T) {
	u := NewUser("Anna", "Kowalska", "1")
	b := dune()

	err := u.Borrow(&b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEntity))

	err = u.Borrow(NewBook("Dune; Messiah", "Herbert", 1969, 256, "Ace", "1"))
	assert.True(t, errors.Is(err, ErrInvalidEntity))
	assert.Empty(t, u.Borrowed)
}
