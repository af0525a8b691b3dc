package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/pike/internal/invoicesettings/domain"
	"github.com/smallbiznis/pike/internal/lock"
	"github.com/smallbiznis/pike/internal/observability/metrics"
	"github.com/smallbiznis/pike/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const lockKey = "invoice-settings"

type Params struct {
	fx.In

	Store   storage.Store
	Locker  lock.Locker
	Log     *zap.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	store   storage.Store
	locker  lock.Locker
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	locker := p.Locker
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Service{
		store:   p.Store,
		locker:  locker,
		log:     p.Log.Named("invoicesettings.service"),
		metrics: p.Metrics,
	}
}

func (s *Service) All(ctx context.Context) (domain.Settings, error) {
	persisted, err := s.load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return s.persist(ctx, domain.Defaults())
	}
	if err != nil {
		return nil, err
	}
	return domain.Merge(domain.Defaults(), persisted), nil
}

func (s *Service) Get(ctx context.Context, key string, fallback any) (any, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if v, ok := all[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (s *Service) Update(ctx context.Context, partial domain.Settings) (domain.Settings, error) {
	unlock, err := s.locker.Lock(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("lock settings: %w", err)
	}
	defer unlock(context.WithoutCancel(ctx))

	current, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := s.persist(ctx, domain.Merge(current, partial))
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSettingsWrite(ctx, "update")
	s.log.Info("invoice settings updated", zap.Int("keys", len(partial)))
	return merged, nil
}

func (s *Service) Reset(ctx context.Context) (domain.Settings, error) {
	unlock, err := s.locker.Lock(ctx, lockKey)
	if err != nil {
		return nil, fmt.Errorf("lock settings: %w", err)
	}
	defer unlock(context.WithoutCancel(ctx))

	defaults, err := s.persist(ctx, domain.Defaults())
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSettingsWrite(ctx, "reset")
	s.log.Info("invoice settings reset to defaults")
	return defaults, nil
}

// load returns the persisted document. A corrupt document reads as empty.
func (s *Service) load(ctx context.Context) (domain.Settings, error) {
	data, err := s.store.Get(ctx, domain.StorageKey)
	if err != nil {
		return nil, err
	}
	settings, err := decode(data)
	if err != nil {
		s.log.Warn("ignoring unreadable invoice settings", zap.Error(err))
		return domain.Settings{}, nil
	}
	return settings, nil
}

// persist writes settings and returns them as a reader would see them afterwards.
func (s *Service) persist(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	data, err := encode(settings)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	if err := s.store.Put(ctx, domain.StorageKey, data); err != nil {
		return nil, fmt.Errorf("write settings: %w", err)
	}
	return decode(data)
}

var _ domain.Service = (*Service)(nil)
