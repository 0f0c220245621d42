package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

func validAuthor() AuthorInput {
	return AuthorInput{
		Name:        "  Frank Herbert ",
		Biography:   "American science fiction author.",
		BirthDate:   time.Date(1920, 10, 8, 0, 0, 0, 0, time.UTC),
		Nationality: "American",
	}
}

func TestUsecase_CreateAuthor(t *testing.T) {
	t.Run("Librarian", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		got, err := f.uc.CreateAuthor(as(librarianID), validAuthor())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Frank Herbert", got.Name)
		assert.Equal(t, f.clock.Now(), got.CreatedAt)
		assert.Contains(t, f.repo.authors, got.ID)
	})

	t.Run("MemberForbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.CreateAuthor(as(memberID), validAuthor())

		requireCode(t, err, goerror.CodeForbidden)
		assert.Empty(t, f.repo.authors)
	})

	t.Run("Anonymous", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.CreateAuthor(context.Background(), validAuthor())

		requireCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("DeathBeforeBirth", func(t *testing.T) {
		f := newFixture(t)
		in := validAuthor()
		death := in.BirthDate.AddDate(-1, 0, 0)
		in.DeathDate = &death

		_, err := f.uc.CreateAuthor(as(librarianID), in)

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestUsecase_DeleteAuthor_InUse(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.seedCatalog()
	f.repo.authors[5] = entity.Author{ID: 5, Name: "Frank Herbert"}
	b := f.repo.books[10]
	b.AuthorIDs = []int64{5}
	f.repo.books[10] = b

	// Act
	err := f.uc.DeleteAuthor(as(librarianID), 5)

	// Assert
	requireCode(t, err, goerror.CodeConflict)
	assert.Contains(t, f.repo.authors, int64(5))
}

func TestUsecase_ListAuthors_Page(t *testing.T) {
	tests := []struct {
		name string
		in   ListInput
		want entity.Page
	}{
		{name: "defaults", in: ListInput{}, want: entity.Page{Page: 1, Size: entity.DefaultPageSize}},
		{name: "capped", in: ListInput{Page: 3, Size: 50}, want: entity.Page{Page: 3, Size: entity.MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			out, err := f.uc.ListAuthors(context.Background(), tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.want, f.repo.lastPage)
			assert.Equal(t, tt.want, out.Page)
		})
	}
}

func TestUsecase_GetAuthor_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.GetAuthor(context.Background(), 404)

	requireCode(t, err, goerror.CodeNotFound)
}

func TestUsecase_CreateCategory(t *testing.T) {
	t.Run("BadSlug", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.CreateCategory(as(librarianID), CategoryInput{Name: "Sci-Fi", Description: "Space", Slug: "Sci Fi"})

		requireCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("DuplicateSlug", func(t *testing.T) {
		f := newFixture(t)
		f.repo.categories[1] = entity.Category{ID: 1, Slug: "sci-fi"}

		_, err := f.uc.CreateCategory(as(librarianID), CategoryInput{Name: "Sci-Fi", Description: "Space", Slug: "sci-fi"})

		requireCode(t, err, goerror.CodeConflict)
	})
}

func TestUsecase_CreateBook(t *testing.T) {
	valid := func() BookInput {
		return BookInput{
			Title:           "Dune",
			Summary:         "Desert planet.",
			PublicationDate: time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC),
			ISBN:            "9780441013593",
			Pages:           412,
			Language:        "en",
			PublisherID:     1,
			Format:          "paperback",
			AuthorIDs:       []int64{7, 3, 7},
		}
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.repo.publishers[1] = entity.Publisher{ID: 1}

		// Act
		got, err := f.uc.CreateBook(as(librarianID), valid())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 7}, got.AuthorIDs)
	})

	t.Run("InvalidISBN", func(t *testing.T) {
		f := newFixture(t)
		in := valid()
		in.ISBN = "978-0441013593"

		_, err := f.uc.CreateBook(as(librarianID), in)

		requireCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("UnknownPublisher", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.CreateBook(as(librarianID), valid())

		requireCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestUsecase_GetBook_Ratings(t *testing.T) {
	// Arrange
	f := newFixture(t)
	bookID, _ := f.seedCatalog()
	f.repo.ratings[1] = entity.Rating{ID: 1, BookID: bookID, UserID: memberID, Rating: 4}
	f.repo.ratings[2] = entity.Rating{ID: 2, BookID: bookID, UserID: otherID, Rating: 5}

	// Act
	got, err := f.uc.GetBook(context.Background(), bookID)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 4.5, got.RatingAverage, 0.001)
	assert.Equal(t, int64(2), got.RatingCount)
}

func TestUsecase_CreateCopy(t *testing.T) {
	// Arrange
	f := newFixture(t)
	bookID, _ := f.seedCatalog()

	// Act
	got, err := f.uc.CreateCopy(as(librarianID), CopyInput{
		BookID:          bookID,
		Condition:       "new",
		AcquisitionDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Location:        "A-1",
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, got.Available)
	assert.True(t, f.repo.copies[got.ID].Available)
}
