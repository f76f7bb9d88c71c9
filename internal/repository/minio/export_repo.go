package minio

import (
	"bytes"
	"context"
	"path"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ExportRepo хранит выгрузки каталога категорий в MinIO.
type ExportRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewExportRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ExportRepo {
	return &ExportRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает файл выгрузки под префиксом ExportPrefix и возвращает ключ объекта.
func (x *ExportRepo) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := x.objectKey(name)

	info, err := x.mc.PutObject(ctx, x.cfg.BucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (x *ExportRepo) Delete(ctx context.Context, key string) error {
	if err := x.mc.RemoveObject(ctx, x.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (x *ExportRepo) objectKey(name string) string {
	if x.cfg.ExportPrefix == "" {
		return name
	}

	return path.Join(x.cfg.ExportPrefix, name)
}
