// Package blob stores uploaded catalogue images in object storage.
package blob

import (
	"context"
	"io"
	"time"

	"github.com/shandysiswandi/libris/internal/pkg/instrument"
	"github.com/shandysiswandi/libris/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
)

type Blob struct {
	store  storage.Storage
	expiry time.Duration
	ins    instrument.Instrumentation
}

// New wraps store. expiry bounds presigned links on drivers without a public URL.
func New(store storage.Storage, expiry time.Duration, ins instrument.Instrumentation) *Blob {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &Blob{store: store, expiry: expiry, ins: ins}
}

// Upload stores r under key and returns the link clients should use.
func (b *Blob) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (_ string, err error) {
	ctx, span := b.ins.Tracer("library.outbound.blob").Start(ctx, "Upload")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	obj, err := b.store.Put(ctx, key, r, storage.PutOptions{Size: size, ContentType: contentType})
	if err != nil {
		return "", err
	}

	return b.store.URL(ctx, obj.Key, b.expiry)
}
