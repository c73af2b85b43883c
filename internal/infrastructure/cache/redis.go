package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-bodegas/internal/application/inventory"
	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/redis/go-redis/v9"
)

var (
	_ inventory.ItemCache          = (*BarcodeCache)(nil)
	_ withdrawal.BarcodeInvalidator = (*BarcodeCache)(nil)
)

// NewRedis crea el cliente go-redis y valida la conexión al arrancar.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// BarcodeCache cache-aside de ítems por código de barras con TTL.
type BarcodeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBarcodeCache construye la caché. ttl <= 0 usa 5 minutos.
func NewBarcodeCache(rdb *redis.Client, ttl time.Duration) *BarcodeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &BarcodeCache{rdb: rdb, ttl: ttl}
}

func barcodeKey(barcode string) string { return fmt.Sprintf("items:barcode:%s", barcode) }

// Get devuelve (nil, false, nil) si no hay entrada.
func (c *BarcodeCache) Get(ctx context.Context, barcode string) (*entity.Item, bool, error) {
	b, err := c.rdb.Get(ctx, barcodeKey(barcode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var it entity.Item
	if err := json.Unmarshal(b, &it); err != nil {
		// Entrada corrupta: se descarta y se trata como ausente.
		_ = c.rdb.Del(ctx, barcodeKey(barcode)).Err()
		return nil, false, nil
	}
	return &it, true, nil
}

// Set guarda el ítem bajo su código de barras.
func (c *BarcodeCache) Set(ctx context.Context, it *entity.Item) error {
	b, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if err := c.rdb.Set(ctx, barcodeKey(it.Barcode), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate borra las entradas de los códigos indicados.
func (c *BarcodeCache) Invalidate(ctx context.Context, barcodes ...string) error {
	keys := make([]string, 0, len(barcodes))
	for _, bc := range barcodes {
		if bc != "" {
			keys = append(keys, barcodeKey(bc))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Noop caché deshabilitada (sin REDIS_URL): nunca encuentra nada.
type Noop struct{}

var (
	_ inventory.ItemCache          = Noop{}
	_ withdrawal.BarcodeInvalidator = Noop{}
)

func (Noop) Get(context.Context, string) (*entity.Item, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, *entity.Item) error                 { return nil }
func (Noop) Invalidate(context.Context, ...string) error             { return nil }
