package main

import (
	"context"

	"go.uber.org/multierr"

	"github.com/wirebazaar/wirebazaar-backend/internal/catalog"
	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	"github.com/wirebazaar/wirebazaar-backend/internal/users"
	"github.com/wirebazaar/wirebazaar-backend/pkg/config"
	"github.com/wirebazaar/wirebazaar-backend/pkg/db"
	"github.com/wirebazaar/wirebazaar-backend/pkg/kvstore"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/migrate"
	"github.com/wirebazaar/wirebazaar-backend/pkg/redis"
)

type storeKeys interface {
	BlobKey(name string) string
	CartKey(clientKey string) string
	SessionKey(sessionID string) string
	VerificationKey(contactDigest string) string
}

// infra holds the storage handles for one deployment mode. db is nil for the
// local backend; redis is nil when no Redis URL or address is configured.
type infra struct {
	db    *db.Client
	redis *redis.Client
	store kvstore.Store
	keys  storeKeys

	catalogRepo   catalog.Repository
	ordersRepo    orders.Repository
	inquiriesRepo inquiries.Repository
	usersRepo     users.Repository
}

func openInfra(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*infra, error) {
	out := &infra{}

	if cfg.Redis.Enabled() {
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		out.redis = client
		out.store = kvstore.NewRedisStore(client)
		out.keys = client
	} else {
		logg.Warn(ctx, "redis not configured, using in-process memory store")
		out.store = kvstore.NewMemoryStore()
		out.keys = kvstore.MemoryKeys{}
	}

	ordersCache := orders.NewBlobRepository(out.store, out.keys)
	inquiriesCache := inquiries.NewBlobRepository(out.store, out.keys)

	if !cfg.Storage.IsRemote() {
		out.catalogRepo = catalog.NewBlobRepository(out.store, out.keys)
		out.ordersRepo = ordersCache
		out.inquiriesRepo = inquiriesCache
		out.usersRepo = users.NewLocalRepository(out.store, out.keys)
		return out, nil
	}

	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return nil, multierr.Append(err, out.Close())
	}
	out.db = client

	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		return nil, multierr.Append(err, out.Close())
	}

	conn := client.DB()
	products := catalog.NewGormRepository(conn)
	if n, err := products.EnsureSeeded(ctx); err != nil {
		return nil, multierr.Append(err, out.Close())
	} else if n > 0 {
		logg.Info(logg.WithField(ctx, "count", n), "seeded product catalog")
	}
	out.catalogRepo = products
	out.ordersRepo = orders.NewCachedRepository(orders.NewGormRepository(conn), ordersCache, logg)
	out.inquiriesRepo = inquiries.NewCachedRepository(inquiries.NewGormRepository(conn), inquiriesCache, logg)
	out.usersRepo = users.NewGormRepository(conn)
	return out, nil
}

// Close releases every open handle and reports all failures together.
func (i *infra) Close() error {
	var err error
	if i.db != nil {
		err = multierr.Append(err, i.db.Close())
	}
	if i.redis != nil {
		err = multierr.Append(err, i.redis.Close())
	}
	return err
}
