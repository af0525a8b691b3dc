package domain

import "context"

// Client talks to the remote hosting API. Every call is scoped to a server.
type Client interface {
	ListSites(ctx context.Context, serverID int64) ([]Site, error)
	GetSite(ctx context.Context, serverID, siteID int64) (*Site, error)
	CreateSite(ctx context.Context, serverID int64, input CreateSiteInput) (*Site, error)
	DeleteSite(ctx context.Context, serverID, siteID int64) error
	EnableQuickDeploy(ctx context.Context, serverID, siteID int64) error
	ListCertificates(ctx context.Context, serverID, siteID int64) ([]Certificate, error)
	AddSiteAliases(ctx context.Context, serverID, siteID int64, aliases []string) (*Site, error)
	InstallGitRepository(ctx context.Context, serverID, siteID int64, input GitRepositoryInput) error
	ObtainLetsEncryptCertificate(ctx context.Context, serverID, siteID int64, domains []string) error
	GetDeploymentScript(ctx context.Context, serverID, siteID int64) (string, error)
	UpdateDeploymentScript(ctx context.Context, serverID, siteID int64, script string) error
	DeploySite(ctx context.Context, serverID, siteID int64) error
	GetNginxConfiguration(ctx context.Context, serverID, siteID int64) (string, error)
	UpdateNginxConfiguration(ctx context.Context, serverID, siteID int64, content string) error
}

// Service exposes site operations on the configured server.
type Service interface {
	ListSites(ctx context.Context) ([]Site, error)
	GetSite(ctx context.Context, siteID int64) (*Site, error)
	DeleteSite(ctx context.Context, siteID int64) error
	CreateSite(ctx context.Context, input CreateSiteInput) (*Site, error)
	GetSiteDomains(ctx context.Context, siteID int64) ([]string, error)
	AddSiteAliases(ctx context.Context, siteID int64, aliases []string) (*Site, error)
	InstallGitRepository(ctx context.Context, siteID int64, input GitRepositoryInput) error
	ObtainLetsEncryptCertificate(ctx context.Context, siteID int64, domain string) error
	UpdateDeploymentScript(ctx context.Context, siteID int64, script string) error
	GetDeploymentScript(ctx context.Context, siteID int64) (string, error)
	DeploySite(ctx context.Context, siteID int64) error
	UpdateNginxConfiguration(ctx context.Context, siteID int64, content string) error
	GetNginxConfiguration(ctx context.Context, siteID int64) (string, error)
	Provision(ctx context.Context, req ProvisionRequest) (*ProvisioningResult, error)
}
