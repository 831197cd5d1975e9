package repositories

import (
	"context"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
	"gocloud.dev/gcp"

	"github.com/invoicebox/backend/models"
	"github.com/invoicebox/backend/utils"
)

const attachmentUrlExpiry = time.Hour

// BlobRepository stores the raw inbound mails and the invoice attachments. Buckets are opened
// from their url (gs://, s3://, azblob://, file://, mem://) on first use and kept open.
type BlobRepository interface {
	GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error)
	OpenStream(ctx context.Context, bucketUrl, fileName, contentType string) (io.WriteCloser, error)
	DeleteFile(ctx context.Context, bucketUrl, fileName string) error
	GenerateSignedUrl(ctx context.Context, bucketUrl, fileName string) (string, error)
}

// gcsSigner holds what GCS needs to sign download urls, it is empty outside of GCP
type gcsSigner struct {
	accessId   string
	privateKey []byte
}

type blobRepository struct {
	mu      sync.Mutex
	buckets map[string]*blob.Bucket
	signer  gcsSigner
}

// NewBlobRepository panics on an unreadable service account key, it is a deployment error
func NewBlobRepository(googleApplicationCredentials string) BlobRepository {
	repo := &blobRepository{buckets: make(map[string]*blob.Bucket)}
	if googleApplicationCredentials == "" {
		return repo
	}

	key, err := os.ReadFile(googleApplicationCredentials)
	if err != nil {
		panic(errors.Wrap(err, "failed to read service account key"))
	}
	if repo.signer, err = parseServiceAccountKey(key); err != nil {
		panic(err)
	}
	return repo
}

func startBlobSpan(ctx context.Context, name, bucketUrl, fileName string) (context.Context, trace.Span) {
	return utils.OpenTelemetryTracerFromContext(ctx).Start(ctx, "repositories.BlobRepository."+name,
		trace.WithAttributes(
			attribute.String("bucket", bucketUrl),
			attribute.String("file_name", fileName),
		))
}

func (repo *blobRepository) bucket(ctx context.Context, bucketUrl string) (*blob.Bucket, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if bucket, ok := repo.buckets[bucketUrl]; ok {
		return bucket, nil
	}

	parsed, err := url.Parse(bucketUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid bucket url %s", bucketUrl)
	}

	var bucket *blob.Bucket
	if parsed.Scheme == "gs" {
		bucket, err = repo.openGcsBucket(ctx, parsed.Host)
	} else {
		bucket, err = blob.OpenBucket(ctx, bucketUrl)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketUrl)
	}

	ok, err := bucket.IsAccessible(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check the access to bucket %s", bucketUrl)
	}
	if !ok {
		return nil, errors.Newf("bucket %s is not accessible", bucketUrl)
	}
	repo.buckets[bucketUrl] = bucket
	return bucket, nil
}

func (repo *blobRepository) openGcsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, client, name, &gcsblob.Options{
		GoogleAccessID: repo.signer.accessId,
		PrivateKey:     repo.signer.privateKey,
	})
}

func (repo *blobRepository) GetBlob(ctx context.Context, bucketUrl, fileName string) (models.Blob, error) {
	ctx, span := startBlobSpan(ctx, "GetBlob", bucketUrl, fileName)
	defer span.End()

	bucket, err := repo.bucket(ctx, bucketUrl)
	if err != nil {
		return models.Blob{}, err
	}

	reader, err := bucket.NewReader(ctx, fileName, nil)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return models.Blob{}, errors.Wrapf(models.NotFoundError, "object %s in %s", fileName, bucketUrl)
	}
	if err != nil {
		return models.Blob{}, errors.Wrapf(err, "failed to read object %s in %s", fileName, bucketUrl)
	}

	return models.Blob{FileName: fileName, ContentType: reader.ContentType(), ReadCloser: reader}, nil
}

// OpenStream writes an object, served as a download named after the last path segment
func (repo *blobRepository) OpenStream(ctx context.Context, bucketUrl, fileName, contentType string) (io.WriteCloser, error) {
	bucket, err := repo.bucket(ctx, bucketUrl)
	if err != nil {
		return nil, err
	}

	return bucket.NewWriter(ctx, fileName, &blob.WriterOptions{
		ContentType:        contentType,
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", path.Base(fileName)),
	})
}

// DeleteFile succeeds when the object is already gone
func (repo *blobRepository) DeleteFile(ctx context.Context, bucketUrl, fileName string) error {
	ctx, span := startBlobSpan(ctx, "DeleteFile", bucketUrl, fileName)
	defer span.End()

	bucket, err := repo.bucket(ctx, bucketUrl)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := bucket.Delete(ctx, fileName); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "failed to delete object %s in %s", fileName, bucketUrl)
	}
	return nil
}

func (repo *blobRepository) GenerateSignedUrl(ctx context.Context, bucketUrl, fileName string) (string, error) {
	bucket, err := repo.bucket(ctx, bucketUrl)
	if err != nil {
		return "", err
	}

	return bucket.SignedURL(ctx, fileName, &blob.SignedURLOptions{
		Method: http.MethodGet,
		Expiry: attachmentUrlExpiry,
	})
}

// parseServiceAccountKey reads the signing identity out of a credentials file. Impersonated
// and external accounts sign as the service account named in their impersonation url.
func parseServiceAccountKey(key []byte) (gcsSigner, error) {
	var sa struct {
		Type             string `json:"type"`
		ClientEmail      string `json:"client_email"`
		PrivateKey       string `json:"private_key"`
		ImpersonationUrl string `json:"service_account_impersonation_url"`
	}
	if err := json.Unmarshal(key, &sa); err != nil {
		return gcsSigner{}, errors.Wrap(err, "failed to unmarshal service account key")
	}

	var signer gcsSigner
	switch sa.Type {
	case "service_account":
		if sa.ClientEmail == "" {
			return gcsSigner{}, errors.New("empty service account client email")
		}
		signer.accessId = sa.ClientEmail
	case "impersonated_service_account", "external_account":
		start, end := strings.LastIndex(sa.ImpersonationUrl, "/"), strings.LastIndex(sa.ImpersonationUrl, ":")
		if end <= start {
			return gcsSigner{}, errors.New("could not read the service account of the impersonation url")
		}
		signer.accessId = sa.ImpersonationUrl[start+1 : end]
	default:
		return gcsSigner{}, errors.Newf("unsupported credentials type %q", sa.Type)
	}

	if sa.PrivateKey != "" {
		block, _ := pem.Decode([]byte(sa.PrivateKey))
		if block == nil {
			return gcsSigner{}, errors.New("failed to decode the service account private key")
		}
		signer.privateKey = pem.EncodeToMemory(block)
	}
	return signer, nil
}
