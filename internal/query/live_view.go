// Package query derives the reactive, filtered partitions of the bundle
// collection that the UI renders: active, pinned, archived and deleted.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	gocache "github.com/patrickmn/go-cache"

	"staticlink-core/internal/entity"
	"staticlink-core/internal/pkg/logger"
	"staticlink-core/internal/repository/specification"
	"staticlink-core/internal/repository/unitofwork"
)

// ILiveView recomputes derived views whenever the store publishes a change.
// All methods are read-only; nothing here ever mutates the store.
type ILiveView interface {
	Start(ctx context.Context) error
	Active(ctx context.Context, search string) ([]*entity.Bundle, error)
	Pinned(ctx context.Context, search string) ([]*entity.Bundle, error)
	Archived(ctx context.Context, search string) ([]*entity.Bundle, error)
	Deleted(ctx context.Context, search string) ([]*entity.Bundle, error)
}

type liveView struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber message.Subscriber
	topicName  string
	sysLogger  logger.ILogger

	// Memoizes computed partitions between store changes. The expiration is
	// a safety net; the subscription flush is what keeps views fresh.
	cache *gocache.Cache
}

func NewLiveView(
	uowFactory unitofwork.RepositoryFactory,
	subscriber message.Subscriber,
	topicName string,
	sysLogger logger.ILogger,
) ILiveView {
	return &liveView{
		uowFactory: uowFactory,
		subscriber: subscriber,
		topicName:  topicName,
		sysLogger:  sysLogger,
		cache:      gocache.New(30*time.Second, time.Minute),
	}
}

// Start subscribes to the store's change topic. Every message invalidates
// the memoized partitions, so the next read recomputes from a fresh
// snapshot. Safe to run concurrently with further writes.
func (v *liveView) Start(ctx context.Context) error {
	messages, err := v.subscriber.Subscribe(ctx, v.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			v.cache.Flush()
			msg.Ack()
		}
	}()

	return nil
}

func (v *liveView) Active(ctx context.Context, search string) ([]*entity.Bundle, error) {
	return v.partition(ctx, "active", search, specification.Active{})
}

func (v *liveView) Pinned(ctx context.Context, search string) ([]*entity.Bundle, error) {
	return v.partition(ctx, "pinned", search, specification.Active{}, specification.Pinned{})
}

func (v *liveView) Archived(ctx context.Context, search string) ([]*entity.Bundle, error) {
	return v.partition(ctx, "archived", search, specification.Archived{})
}

func (v *liveView) Deleted(ctx context.Context, search string) ([]*entity.Bundle, error) {
	return v.partition(ctx, "deleted", search, specification.Deleted{})
}

func (v *liveView) partition(ctx context.Context, name, search string, specs ...specification.Specification) ([]*entity.Bundle, error) {
	key := name + ":" + strings.ToLower(search)
	if cached, found := v.cache.Get(key); found {
		return cached.([]*entity.Bundle), nil
	}

	if search != "" {
		specs = append(specs, specification.TitleSearch{Query: search})
	}
	// Zero timestamps sort as the oldest possible value, so they land at
	// the bottom of the descending view instead of breaking the order.
	specs = append(specs, specification.OrderBy{Field: "updated_at", Desc: true})

	uow := v.uowFactory.NewUnitOfWork(ctx)
	bundles, err := uow.BundleRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	v.cache.Set(key, bundles, gocache.DefaultExpiration)
	return bundles, nil
}
