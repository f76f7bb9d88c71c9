package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/internal/domain"
	"github.com/DRSN-tech/catalog-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/catalog-backend/pkg/clients"
	"github.com/DRSN-tech/catalog-backend/pkg/e"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// invalidationWindow — сколько после инвалидации запрещено заполнять кэш по промаху.
// Чтение, начатое до коммита изменения, не успеет записать устаревшую копию.
const invalidationWindow = 5 * time.Second

// setUnlessInvalidated пишет KEYS[1], только если нет маркера инвалидации KEYS[2].
var setUnlessInvalidated = r.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.CategoryConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.CategoryConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetCategory возвращает категорию из кэша или (nil, nil) при промахе.
// Повреждённые записи удаляются и считаются промахом.
func (c *CacheRepo) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	key := categoryKey(id)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshalCategoryFromCache(data)
	if err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx, key)
		return nil, nil
	}

	if model.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, model.ID)
		c.drop(ctx, key)
		return nil, nil
	}

	return c.conv.ToEntity(model), nil
}

// SetCategory кэширует категорию на CategoryTTL.
// Запись пропускается, если категория недавно инвалидирована.
func (c *CacheRepo) SetCategory(ctx context.Context, category *domain.Category) error {
	data, err := json.Marshal(c.conv.ToRedisModel(category))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	keys := []string{categoryKey(category.ID()), invalidatedKey(category.ID())}
	stored, err := setUnlessInvalidated.Run(ctx, c.client.Client, keys, data, c.cfg.CategoryTTL.Milliseconds()).Int()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if stored == 0 {
		c.logger.Debugf("Skip caching category %s: invalidated recently", category.ID())
	}

	return nil
}

// DeleteCategory удаляет запись и ставит маркер инвалидации на invalidationWindow.
func (c *CacheRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		pipe.Del(ctx, categoryKey(id))
		pipe.Set(ctx, invalidatedKey(id), 1, invalidationWindow)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) drop(ctx context.Context, key string) {
	if err := c.client.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// unmarshalCategoryFromCache десериализует JSON из кэша в модель категории
func unmarshalCategoryFromCache(data []byte) (*converter.CategoryRedisModel, error) {
	var model converter.CategoryRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// categoryKey возвращает Redis-ключ для одной категории
func categoryKey(id uuid.UUID) string {
	return fmt.Sprintf("category:%s", id)
}

func invalidatedKey(id uuid.UUID) string {
	return fmt.Sprintf("category:%s:invalidated", id)
}
