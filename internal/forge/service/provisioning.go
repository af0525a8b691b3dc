package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/pike/internal/forge/domain"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"github.com/smallbiznis/pike/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type provisionStep struct {
	name    string
	enabled bool
	run     func(ctx context.Context) error
}

// provisionRun carries state shared between steps of a single run.
type provisionRun struct {
	serverID int64
	req      domain.ProvisionRequest
	site     *domain.Site
}

// Provision runs the full site setup. Steps execute in plan order and the
// first failure aborts the run with a *domain.StepError; completed steps are
// not undone.
func (s *Service) Provision(ctx context.Context, req domain.ProvisionRequest) (*domain.ProvisioningResult, error) {
	serverID, err := s.server()
	if err != nil {
		return nil, err
	}
	req = withProvisionDefaults(req)
	if req.Domain == "" {
		return nil, domain.ErrInvalidDomain
	}
	if req.Repository == "" {
		return nil, domain.ErrInvalidRequest
	}

	ctx, span := otel.Tracer("pike/forge").Start(ctx, "forge.provision")
	defer span.End()
	span.SetAttributes(
		attribute.String("forge.domain", req.Domain),
		attribute.Int64("forge.server_id", serverID),
	)

	log := logger.WithContext(ctx, s.log).With(zap.String("domain", req.Domain))
	run := &provisionRun{serverID: serverID, req: req}
	start := time.Now()

	completed := make(domain.Steps, 0, 6)
	for _, step := range s.plan(run) {
		if !step.enabled {
			continue
		}
		if err := s.runStep(ctx, log, step); err != nil {
			s.metrics.ObserveRun(metrics.StepOutcomeFailure, time.Since(start))
			span.RecordError(err)
			span.SetStatus(codes.Error, step.name)
			return nil, &domain.StepError{Step: step.name, Err: err}
		}
		completed = append(completed, domain.StepResult{Name: step.name, Status: domain.StepStatusSuccess})
	}

	s.metrics.ObserveRun(metrics.StepOutcomeSuccess, time.Since(start))
	log.Info("site provisioned",
		zap.Int64("site_id", run.site.ID),
		zap.Strings("steps", completed.Names()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.ProvisioningResult{
		SiteID: run.site.ID,
		Domain: req.Domain,
		Steps:  completed,
	}, nil
}

func (s *Service) plan(run *provisionRun) []provisionStep {
	req := run.req
	return []provisionStep{
		{
			name:    domain.StepCreateSite,
			enabled: true,
			run: func(ctx context.Context) error {
				site, err := s.client.CreateSite(ctx, run.serverID, domain.CreateSiteInput{
					Domain:      req.Domain,
					ProjectType: req.ProjectType,
					PHPVersion:  req.PHPVersion,
					Directory:   domain.DefaultDirectory,
					Isolated:    *req.Isolated,
				})
				if err != nil {
					return err
				}
				run.site = site
				return s.client.EnableQuickDeploy(ctx, run.serverID, site.ID)
			},
		},
		{
			name:    domain.StepInstallGitRepository,
			enabled: true,
			run: func(ctx context.Context) error {
				return s.client.InstallGitRepository(ctx, run.serverID, run.site.ID, domain.GitRepositoryInput{
					Provider:   req.Provider,
					Repository: req.Repository,
					Branch:     req.Branch,
					Composer:   *req.Composer,
				})
			},
		},
		{
			name:    domain.StepObtainSSLCertificate,
			enabled: true,
			run: func(ctx context.Context) error {
				return s.client.ObtainLetsEncryptCertificate(ctx, run.serverID, run.site.ID, []string{req.Domain})
			},
		},
		{
			name:    domain.StepUpdateDeploymentScript,
			enabled: req.DeploymentScript != nil,
			run: func(ctx context.Context) error {
				return s.client.UpdateDeploymentScript(ctx, run.serverID, run.site.ID, *req.DeploymentScript)
			},
		},
		{
			name:    domain.StepUpdateNginxConfiguration,
			enabled: req.NginxConfiguration != nil,
			run: func(ctx context.Context) error {
				return s.client.UpdateNginxConfiguration(ctx, run.serverID, run.site.ID, *req.NginxConfiguration)
			},
		},
		{
			name:    domain.StepDeploySite,
			enabled: true,
			run: func(ctx context.Context) error {
				return s.client.DeploySite(ctx, run.serverID, run.site.ID)
			},
		},
	}
}

func (s *Service) runStep(ctx context.Context, log *zap.Logger, step provisionStep) error {
	ctx, span := otel.Tracer("pike/forge").Start(ctx, "forge.provision."+step.name)
	defer span.End()

	start := time.Now()
	err := step.run(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveStep(step.name, elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, metrics.ClassifyStepReason(err))
		log.Warn("provisioning step failed",
			zap.String("step", step.name),
			zap.String("reason", metrics.ClassifyStepReason(err)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return err
	}

	log.Info("provisioning step completed",
		zap.String("step", step.name),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func withProvisionDefaults(req domain.ProvisionRequest) domain.ProvisionRequest {
	req.Domain = strings.TrimSpace(req.Domain)
	req.Repository = strings.TrimSpace(req.Repository)
	if strings.TrimSpace(req.Branch) == "" {
		req.Branch = domain.DefaultBranch
	}
	if strings.TrimSpace(req.ProjectType) == "" {
		req.ProjectType = domain.DefaultProjectType
	}
	if strings.TrimSpace(req.PHPVersion) == "" {
		req.PHPVersion = domain.DefaultPHPVersion
	}
	if strings.TrimSpace(req.Provider) == "" {
		req.Provider = domain.DefaultProvider
	}
	if req.Isolated == nil {
		isolated := true
		req.Isolated = &isolated
	}
	if req.Composer == nil {
		composer := true
		req.Composer = &composer
	}
	return req
}
