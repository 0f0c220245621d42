package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shandysiswandi/libris/internal/library/entity"
	"github.com/shandysiswandi/libris/internal/pkg/goerror"
)

// MaxUploadBytes caps cover, photo and logo uploads.
const MaxUploadBytes = 2 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png"}

type UploadInput struct {
	Asset entity.Asset
	ID    int64
	File  io.Reader
}

type UploadOutput struct {
	URL string
}

// UploadAsset stores an image for a book, author or publisher and records its URL.
// The content type is sniffed from the bytes, the client supplied one is ignored.
func (s *Usecase) UploadAsset(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	ctx, span := s.startSpan(ctx, "UploadAsset")
	defer span.End()

	if _, err := s.authorize(ctx, objCatalog, actUpdate); err != nil {
		return nil, err
	}

	what, err := s.assetOwnerExists(ctx, in.Asset, in.ID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(in.File, MaxUploadBytes+1))
	if err != nil {
		return nil, goerror.NewInvalidFormat("failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, goerror.NewInvalidInput(nil, "file", "file is required")
	}
	if len(data) > MaxUploadBytes {
		return nil, goerror.NewInvalidInput(nil, "file", "file must not exceed 2MB")
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		slog.WarnContext(ctx, "rejected upload content type", "asset", in.Asset.String(), "id", in.ID, "type", mt.String())
		return nil, goerror.NewInvalidInput(nil, "file", "file must be a jpeg or png image")
	}

	key := in.Asset.String() + strconv.FormatInt(in.ID, 10) + "-" + s.oid.Generate() + mt.Extension()
	url, err := s.repoBlob.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mt.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to upload asset", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateAssetURL(ctx, in.Asset, in.ID, url, s.clock.Now()); err != nil {
		return nil, repoError(ctx, err, actUpdate, what, in.ID)
	}

	return &UploadOutput{URL: url}, nil
}

func (s *Usecase) assetOwnerExists(ctx context.Context, asset entity.Asset, id int64) (string, error) {
	var (
		what string
		err  error
	)
	switch asset {
	case entity.AssetBookCover:
		what = "book"
		_, err = s.repoDB.GetBook(ctx, id)
	case entity.AssetAuthorPhoto:
		what = "author"
		_, err = s.repoDB.GetAuthor(ctx, id)
	case entity.AssetPublisherLogo:
		what = "publisher"
		_, err = s.repoDB.GetPublisher(ctx, id)
	default:
		return "", goerror.NewInvalidFormat("unknown asset")
	}
	if err != nil {
		return "", repoError(ctx, err, "get", what, id)
	}

	return what, nil
}
