package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/invoicebox/backend/models"
)

type BlobRepository struct {
	mock.Mock
}

func (r *BlobRepository) GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error) {
	args := r.Called(ctx, bucketUrl, fileName)
	return args.Get(0).(models.Blob), args.Error(1)
}

func (r *BlobRepository) OpenStream(ctx context.Context, bucketUrl, fileName, contentType string) (io.WriteCloser, error) {
	args := r.Called(ctx, bucketUrl, fileName, contentType)
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (r *BlobRepository) DeleteFile(ctx context.Context, bucketUrl, fileName string) error {
	args := r.Called(ctx, bucketUrl, fileName)
	return args.Error(0)
}

func (r *BlobRepository) GenerateSignedUrl(ctx context.Context, bucketUrl, fileName string) (string, error) {
	args := r.Called(ctx, bucketUrl, fileName)
	return args.String(0), args.Error(1)
}
