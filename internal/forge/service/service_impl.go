package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/forge/domain"
	"github.com/smallbiznis/pike/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Client  domain.Client
	Log     *zap.Logger
	Metrics *metrics.ProvisioningMetrics `optional:"true"`
}

type Service struct {
	client   domain.Client
	serverID int64
	log      *zap.Logger
	metrics  *metrics.ProvisioningMetrics
}

var _ domain.Service = (*Service)(nil)

func NewService(p Params) domain.Service {
	return &Service{
		client:   p.Client,
		serverID: p.Config.Forge.ServerID,
		log:      p.Log.Named("forge.service"),
		metrics:  p.Metrics,
	}
}

func (s *Service) server() (int64, error) {
	if s.serverID <= 0 {
		return 0, domain.ErrNotConfigured
	}
	return s.serverID, nil
}

func (s *Service) scope(siteID int64) (int64, error) {
	serverID, err := s.server()
	if err != nil {
		return 0, err
	}
	if siteID <= 0 {
		return 0, domain.ErrInvalidSiteID
	}
	return serverID, nil
}

func (s *Service) ListSites(ctx context.Context) ([]domain.Site, error) {
	serverID, err := s.server()
	if err != nil {
		return nil, err
	}
	return s.client.ListSites(ctx, serverID)
}

func (s *Service) GetSite(ctx context.Context, siteID int64) (*domain.Site, error) {
	serverID, err := s.scope(siteID)
	if err != nil {
		return nil, err
	}
	return s.client.GetSite(ctx, serverID, siteID)
}

func (s *Service) DeleteSite(ctx context.Context, siteID int64) error {
	serverID, err := s.scope(siteID)
	if err != nil {
		return err
	}
	if err := s.client.DeleteSite(ctx, serverID, siteID); err != nil {
		return err
	}
	s.log.Info("site deleted", zap.Int64("site_id", siteID))
	return nil
}

// CreateSite creates the site and enables quick deploy on it.
func (s *Service) CreateSite(ctx context.Context, input domain.CreateSiteInput) (*domain.Site, error) {
	serverID, err := s.server()
	if err != nil {
		return nil, err
	}
	input.Domain = strings.TrimSpace(input.Domain)
	if input.Domain == "" {
		return nil, domain.ErrInvalidDomain
	}
	if input.ProjectType == "" {
		input.ProjectType = domain.DefaultProjectType
	}
	if input.PHPVersion == "" {
		input.PHPVersion = domain.DefaultPHPVersion
	}
	if input.Directory == "" {
		input.Directory = domain.DefaultDirectory
	}

	site, err := s.client.CreateSite(ctx, serverID, input)
	if err != nil {
		return nil, err
	}
	if err := s.client.EnableQuickDeploy(ctx, serverID, site.ID); err != nil {
		return nil, err
	}
	s.log.Info("site created", zap.Int64("site_id", site.ID), zap.String("domain", input.Domain))
	return site, nil
}

// GetSiteDomains returns the primary name, then aliases, then certificate
// domains, without duplicates.
func (s *Service) GetSiteDomains(ctx context.Context, siteID int64) ([]string, error) {
	serverID, err := s.scope(siteID)
	if err != nil {
		return nil, err
	}
	site, err := s.client.GetSite(ctx, serverID, siteID)
	if err != nil {
		return nil, err
	}
	certs, err := s.client.ListCertificates(ctx, serverID, siteID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	domains := make([]string, 0, 1+len(site.Aliases)+len(certs))
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		domains = append(domains, name)
	}

	add(site.Name)
	for _, alias := range site.Aliases {
		add(alias)
	}
	for _, cert := range certs {
		add(cert.Domain)
	}
	return domains, nil
}

func (s *Service) AddSiteAliases(ctx context.Context, siteID int64, aliases []string) (*domain.Site, error) {
	serverID, err := s.scope(siteID)
	if err != nil {
		return nil, err
	}
	return s.client.AddSiteAliases(ctx, serverID, siteID, aliases)
}

func (s *Service) InstallGitRepository(ctx context.Context, siteID int64, input domain.GitRepositoryInput) error {
	serverID, err := s.scope(siteID)
	if err != nil {
		return err
	}
	if input.Branch == "" {
		input.Branch = domain.DefaultBranch
	}
	if input.Provider == "" {
		input.Provider = domain.DefaultProvider
	}
	return s.client.InstallGitRepository(ctx, serverID, siteID, input)
}

func (s *Service) ObtainLetsEncryptCertificate(ctx context.Context, siteID int64, name string) error {
	serverID, err := s.scope(siteID)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidDomain
	}
	return s.client.ObtainLetsEncryptCertificate(ctx, serverID, siteID, []string{name})
}

func (s *Service) UpdateDeploymentScript(ctx context.Context, siteID int64, script string) error {
	serverID, err := s.scope(siteID)
	if err != nil {
		return err
	}
	return s.client.UpdateDeploymentScript(ctx, serverID, siteID, script)
}

func (s *Service) GetDeploymentScript(ctx context.Context, siteID int64) (string, error) {
	serverID, err := s.scope(siteID)
	if err != nil {
		return "", err
	}
	return s.client.GetDeploymentScript(ctx, serverID, siteID)
}

func (s *Service) DeploySite(ctx context.Context, siteID int64) error {
	serverID, err := s.scope(siteID)
	if err != nil {
		return err
	}
	return s.client.DeploySite(ctx, serverID, siteID)
}

func (s *Service) UpdateNginxConfiguration(ctx context.Context, siteID int64, content string) error {
	serverID, err := s.scope(siteID)
	if err != nil {
		return err
	}
	return s.client.UpdateNginxConfiguration(ctx, serverID, siteID, content)
}

func (s *Service) GetNginxConfiguration(ctx context.Context, siteID int64) (string, error) {
	serverID, err := s.scope(siteID)
	if err != nil {
		return "", err
	}
	return s.client.GetNginxConfiguration(ctx, serverID, siteID)
}
