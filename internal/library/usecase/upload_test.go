package usecase

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUsecase_UploadAsset(t *testing.T) {
	t.Run("BookCover", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		bookID, _ := f.seedCatalog()

		// Act
		got, err := f.uc.UploadAsset(as(librarianID), UploadInput{
			Asset: entity.AssetBookCover,
			ID:    bookID,
			File:  bytes.NewReader(pngHeader),
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/books/covers/10-obj.png", got.URL)
		assert.Equal(t, []string{"image/png"}, f.blob.types)
		assert.Equal(t, got.URL, f.repo.assets[entity.AssetBookCover][bookID])
	})

	t.Run("NotAnImage", func(t *testing.T) {
		f := newFixture(t)
		bookID, _ := f.seedCatalog()

		_, err := f.uc.UploadAsset(as(librarianID), UploadInput{
			Asset: entity.AssetBookCover,
			ID:    bookID,
			File:  strings.NewReader("#!/bin/sh\necho hi\n"),
		})

		requireCode(t, err, goerror.CodeInvalidInput)
		assert.Empty(t, f.blob.keys)
	})

	t.Run("TooLarge", func(t *testing.T) {
		f := newFixture(t)
		bookID, _ := f.seedCatalog()
		data := append(append([]byte{}, pngHeader...), make([]byte, MaxUploadBytes)...)

		_, err := f.uc.UploadAsset(as(librarianID), UploadInput{
			Asset: entity.AssetBookCover,
			ID:    bookID,
			File:  bytes.NewReader(data),
		})

		requireCode(t, err, goerror.CodeInvalidInput)
		assert.Empty(t, f.blob.keys)
	})

	t.Run("Empty", func(t *testing.T) {
		f := newFixture(t)
		bookID, _ := f.seedCatalog()

		_, err := f.uc.UploadAsset(as(librarianID), UploadInput{Asset: entity.AssetBookCover, ID: bookID, File: bytes.NewReader(nil)})

		requireCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("UnknownAuthor", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.UploadAsset(as(librarianID), UploadInput{
			Asset: entity.AssetAuthorPhoto,
			ID:    404,
			File:  bytes.NewReader(pngHeader),
		})

		requireCode(t, err, goerror.CodeNotFound)
	})

	t.Run("Member", func(t *testing.T) {
		f := newFixture(t)
		bookID, _ := f.seedCatalog()

		_, err := f.uc.UploadAsset(as(memberID), UploadInput{
			Asset: entity.AssetBookCover,
			ID:    bookID,
			File:  bytes.NewReader(pngHeader),
		})

		requireCode(t, err, goerror.CodeForbidden)
	})
}
