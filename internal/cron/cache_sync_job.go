package cron

import (
	"context"
	"fmt"

	"github.com/wirebazaar/wirebazaar-backend/internal/inquiries"
	"github.com/wirebazaar/wirebazaar-backend/internal/orders"
	pkgerrors "github.com/wirebazaar/wirebazaar-backend/pkg/errors"
	"github.com/wirebazaar/wirebazaar-backend/pkg/logger"
	"github.com/wirebazaar/wirebazaar-backend/pkg/metrics"
	"github.com/wirebazaar/wirebazaar-backend/pkg/pagination"
)

const (
	ordersSyncJobName    = "orders-cache-sync"
	inquiriesSyncJobName = "inquiries-cache-sync"
)

type orderSource interface {
	List(ctx context.Context, filters orders.ListFilters, params pagination.Params) ([]orders.Order, string, error)
}

type orderCache interface {
	ReplaceAll(ctx context.Context, items []orders.Order) error
}

type inquirySource interface {
	All(ctx context.Context) ([]inquiries.Inquiry, error)
}

type inquiryCache interface {
	ReplaceAll(ctx context.Context, items []inquiries.Inquiry) error
}

// OrdersSyncJobParams wires the authoritative order store to its cache copy.
type OrdersSyncJobParams struct {
	Logger   *logger.Logger
	Source   orderSource
	Cache    orderCache
	Metrics  *metrics.CronJobMetrics
	PageSize int
}

// NewOrdersSyncJob copies every order from the remote store into the cache.
// The cache is only replaced after the full read succeeds.
func NewOrdersSyncJob(params OrdersSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil || params.Cache == nil {
		return nil, fmt.Errorf("orders source and cache required")
	}
	return &ordersSyncJob{
		logg:     params.Logger,
		source:   params.Source,
		cache:    params.Cache,
		metrics:  params.Metrics,
		pageSize: pagination.NormalizeLimit(params.PageSize),
	}, nil
}

type ordersSyncJob struct {
	logg     *logger.Logger
	source   orderSource
	cache    orderCache
	metrics  *metrics.CronJobMetrics
	pageSize int
}

func (j *ordersSyncJob) Name() string { return ordersSyncJobName }

func (j *ordersSyncJob) Run(ctx context.Context) error {
	var (
		all    []orders.Order
		cursor string
		pages  int
	)
	for {
		page, next, err := j.source.List(ctx, orders.ListFilters{}, pagination.Params{Limit: j.pageSize, Cursor: cursor})
		if err != nil {
			return fmt.Errorf("read orders page %d: %w", pages+1, err)
		}
		all = append(all, page...)
		pages++
		if next == "" {
			break
		}
		cursor = next
	}
	if err := j.cache.ReplaceAll(ctx, all); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write orders cache")
	}
	j.metrics.AddSynced(j.Name(), len(all))
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{"records": len(all), "pages": pages}), "cache_sync.orders")
	return nil
}

// InquiriesSyncJobParams wires the authoritative inquiry store to its cache copy.
type InquiriesSyncJobParams struct {
	Logger  *logger.Logger
	Source  inquirySource
	Cache   inquiryCache
	Metrics *metrics.CronJobMetrics
}

// NewInquiriesSyncJob copies every inquiry from the remote store into the cache.
func NewInquiriesSyncJob(params InquiriesSyncJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil || params.Cache == nil {
		return nil, fmt.Errorf("inquiries source and cache required")
	}
	return &inquiriesSyncJob{
		logg:    params.Logger,
		source:  params.Source,
		cache:   params.Cache,
		metrics: params.Metrics,
	}, nil
}

type inquiriesSyncJob struct {
	logg    *logger.Logger
	source  inquirySource
	cache   inquiryCache
	metrics *metrics.CronJobMetrics
}

func (j *inquiriesSyncJob) Name() string { return inquiriesSyncJobName }

func (j *inquiriesSyncJob) Run(ctx context.Context) error {
	items, err := j.source.All(ctx)
	if err != nil {
		return fmt.Errorf("read inquiries: %w", err)
	}
	if err := j.cache.ReplaceAll(ctx, items); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write inquiries cache")
	}
	j.metrics.AddSynced(j.Name(), len(items))
	j.logg.Info(j.logg.WithField(ctx, "records", len(items)), "cache_sync.inquiries")
	return nil
}
