package clients

import (
	"context"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinIOClient создаёт клиент S3-совместимого хранилища выгрузок.
func NewMinIOClient(cfg *cfg.MinIOCfg) (*minio.Client, error) {
	const op = "clients.NewMinIOClient"

	if cfg.MinioEndpoint == "" {
		return nil, e.Wrap(op+": MINIO_ENDPOINT", e.ErrIncorrectEnvVariable)
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioRootUser, cfg.MinioRootPassword, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return client, nil
}

// EnsureBucket создаёт бакет, если его ещё нет.
// Бакет, созданный параллельно другим экземпляром сервиса, не считается ошибкой.
func EnsureBucket(ctx context.Context, client *minio.Client, bucketName string) error {
	const op = "clients.EnsureBucket"

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return e.Wrap(op, err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return nil
		}
		return e.Wrap(op, err)
	}

	return nil
}
