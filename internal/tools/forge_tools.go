package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	forgedomain "github.com/smallbiznis/pike/internal/forge/domain"
)

const (
	ToolForgeListSites                = "forge-list-sites"
	ToolForgeGetSite                  = "forge-get-site"
	ToolForgeGetSiteDomains           = "forge-get-site-domains"
	ToolForgeDeleteSite               = "forge-delete-site"
	ToolForgeCreateSite               = "forge-create-site"
	ToolForgeInstallGitRepository     = "forge-install-git-repository"
	ToolForgeSetupSSL                 = "forge-setup-ssl"
	ToolForgeUpdateDeploymentScript   = "forge-update-deployment-script"
	ToolForgeGetDeploymentScript      = "forge-get-deployment-script"
	ToolForgeDeploySite               = "forge-deploy-site"
	ToolForgeUpdateNginxConfiguration = "forge-update-nginx-configuration"
	ToolForgeGetNginxConfiguration    = "forge-get-nginx-configuration"
	ToolForgeProvisionSite            = "forge-provision-site"
)

type siteRequest struct {
	SiteID int64 `json:"site_id" validate:"required,gt=0"`
}

type createSiteRequest struct {
	Domain      string `json:"domain" validate:"required,max=253"`
	ProjectType string `json:"project_type,omitempty" validate:"omitempty,oneof=php html symfony symfony_dev symfony_four"`
	PHPVersion  string `json:"php_version,omitempty" validate:"omitempty,max=10"`
	Isolated    *bool  `json:"isolated,omitempty"`
}

type installRepositoryRequest struct {
	SiteID     int64  `json:"site_id" validate:"required,gt=0"`
	Repository string `json:"repository" validate:"required,max=255"`
	Branch     string `json:"branch,omitempty" validate:"omitempty,max=255"`
	Provider   string `json:"provider,omitempty" validate:"omitempty,oneof=github gitlab bitbucket custom"`
}

type setupSSLRequest struct {
	SiteID int64  `json:"site_id" validate:"required,gt=0"`
	Domain string `json:"domain" validate:"required,max=253"`
}

type deploymentScriptRequest struct {
	SiteID int64  `json:"site_id" validate:"required,gt=0"`
	Script string `json:"script" validate:"required"`
}

type nginxConfigurationRequest struct {
	SiteID        int64  `json:"site_id" validate:"required,gt=0"`
	Configuration string `json:"configuration" validate:"required"`
}

type siteSummary struct {
	ID          int64  `json:"id"`
	Domain      string `json:"domain"`
	Status      string `json:"status"`
	Repository  string `json:"repository"`
	Branch      string `json:"branch"`
	PHPVersion  string `json:"php_version"`
	ProjectType string `json:"project_type"`
}

type siteDetail struct {
	ID                 int64    `json:"id"`
	Domain             string   `json:"domain"`
	Aliases            []string `json:"aliases"`
	Directory          string   `json:"directory"`
	Wildcards          bool     `json:"wildcards"`
	Status             string   `json:"status"`
	Repository         string   `json:"repository"`
	RepositoryProvider string   `json:"repository_provider"`
	RepositoryBranch   string   `json:"repository_branch"`
	RepositoryStatus   string   `json:"repository_status"`
	QuickDeploy        bool     `json:"quick_deploy"`
	DeploymentStatus   string   `json:"deployment_status"`
	ProjectType        string   `json:"project_type"`
	PHPVersion         string   `json:"php_version"`
	IsSecured          bool     `json:"is_secured"`
	Username           string   `json:"username"`
	DeploymentURL      string   `json:"deployment_url"`
	CreatedAt          string   `json:"created_at"`
	Tags               []string `json:"tags"`
}

func newSiteDetail(site *forgedomain.Site) siteDetail {
	aliases := site.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	tags := site.Tags
	if tags == nil {
		tags = []string{}
	}
	return siteDetail{
		ID:                 site.ID,
		Domain:             site.Name,
		Aliases:            aliases,
		Directory:          site.Directory,
		Wildcards:          site.Wildcards,
		Status:             site.Status,
		Repository:         site.Repository,
		RepositoryProvider: site.RepositoryProvider,
		RepositoryBranch:   site.RepositoryBranch,
		RepositoryStatus:   site.RepositoryStatus,
		QuickDeploy:        site.QuickDeploy,
		DeploymentStatus:   site.DeploymentStatus,
		ProjectType:        site.ProjectType,
		PHPVersion:         site.PHPVersion,
		IsSecured:          site.IsSecured,
		Username:           site.Username,
		DeploymentURL:      site.DeploymentURL,
		CreatedAt:          site.CreatedAt,
		Tags:               tags,
	}
}

func siteIDArg() mcp.ToolOption {
	return mcp.WithNumber("site_id", mcp.Required(), mcp.Min(1),
		mcp.Description("The Forge site ID."))
}

func (s *Server) registerForgeTools() {
	s.add(mcp.NewTool(ToolForgeListSites,
		mcp.WithDescription("Lists all sites on the configured Laravel Forge server."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeListSites)

	s.add(mcp.NewTool(ToolForgeGetSite,
		mcp.WithDescription("Gets detailed information about a specific site on the Forge server."),
		siteIDArg(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeGetSite)

	s.add(mcp.NewTool(ToolForgeGetSiteDomains,
		mcp.WithDescription("Gets all domains (primary, aliases and certificate domains) for a Forge site."),
		siteIDArg(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeGetSiteDomains)

	s.add(mcp.NewTool(ToolForgeDeleteSite,
		mcp.WithDescription("Deletes a site from the configured Laravel Forge server. This action is irreversible."),
		siteIDArg(),
		mcp.WithDestructiveHintAnnotation(true),
	), s.forgeDeleteSite)

	s.add(mcp.NewTool(ToolForgeCreateSite,
		mcp.WithDescription("Creates a new site on the configured Laravel Forge server."),
		mcp.WithString("domain", mcp.Required(), mcp.MaxLength(253),
			mcp.Description(`The domain name for the site (e.g., "example.com").`)),
		mcp.WithString("project_type", mcp.Enum(forgedomain.ProjectTypes...),
			mcp.Description(`The project type (php, html, symfony, symfony_dev, symfony_four). Defaults to "php".`)),
		mcp.WithString("php_version", mcp.MaxLength(10),
			mcp.Description(`The PHP version (e.g., "php83"). Defaults to "php83".`)),
		mcp.WithBoolean("isolated",
			mcp.Description("Whether to use PHP user isolation. Defaults to true.")),
		mcp.WithDestructiveHintAnnotation(false),
	), s.forgeCreateSite)

	s.add(mcp.NewTool(ToolForgeInstallGitRepository,
		mcp.WithDescription("Installs a git repository on a Forge site."),
		siteIDArg(),
		mcp.WithString("repository", mcp.Required(), mcp.MaxLength(255),
			mcp.Description(`The git repository path (e.g., "user/repo").`)),
		mcp.WithString("branch", mcp.MaxLength(255),
			mcp.Description(`The branch to install. Defaults to "main".`)),
		mcp.WithString("provider", mcp.Enum(forgedomain.GitProviders...),
			mcp.Description(`The git provider. Defaults to "gitlab".`)),
	), s.forgeInstallGitRepository)

	s.add(mcp.NewTool(ToolForgeSetupSSL,
		mcp.WithDescription("Obtains a Let's Encrypt SSL certificate for a Forge site."),
		siteIDArg(),
		mcp.WithString("domain", mcp.Required(), mcp.MaxLength(253),
			mcp.Description("The domain to secure.")),
	), s.forgeSetupSSL)

	s.add(mcp.NewTool(ToolForgeUpdateDeploymentScript,
		mcp.WithDescription("Updates the deployment script for a Forge site."),
		siteIDArg(),
		mcp.WithString("script", mcp.Required(),
			mcp.Description("The full deployment script content.")),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeUpdateDeploymentScript)

	s.add(mcp.NewTool(ToolForgeGetDeploymentScript,
		mcp.WithDescription("Gets the current deployment script for a Forge site."),
		siteIDArg(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeGetDeploymentScript)

	s.add(mcp.NewTool(ToolForgeDeploySite,
		mcp.WithDescription("Triggers a deployment for a Forge site."),
		siteIDArg(),
	), s.forgeDeploySite)

	s.add(mcp.NewTool(ToolForgeUpdateNginxConfiguration,
		mcp.WithDescription("Updates the nginx configuration for a Forge site."),
		siteIDArg(),
		mcp.WithString("configuration", mcp.Required(),
			mcp.Description("The full nginx configuration content.")),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeUpdateNginxConfiguration)

	s.add(mcp.NewTool(ToolForgeGetNginxConfiguration,
		mcp.WithDescription("Gets the current nginx configuration for a Forge site."),
		siteIDArg(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	), s.forgeGetNginxConfiguration)

	s.add(mcp.NewTool(ToolForgeProvisionSite,
		mcp.WithDescription("Provisions a complete site on Forge: creates site, installs git repo, obtains SSL, sets deploy script, configures nginx, and deploys."),
		mcp.WithString("domain", mcp.Required(), mcp.MaxLength(253),
			mcp.Description("The domain name for the site.")),
		mcp.WithString("repository", mcp.Required(), mcp.MaxLength(255),
			mcp.Description(`The git repository path (e.g., "user/repo").`)),
		mcp.WithString("branch", mcp.MaxLength(255),
			mcp.Description(`The branch to deploy. Defaults to "main".`)),
		mcp.WithString("project_type", mcp.Enum(forgedomain.ProjectTypes...),
			mcp.Description(`The project type. Defaults to "php".`)),
		mcp.WithString("php_version", mcp.MaxLength(10),
			mcp.Description(`The PHP version. Defaults to "php83".`)),
		mcp.WithBoolean("isolated",
			mcp.Description("Whether to use PHP user isolation. Defaults to true.")),
		mcp.WithString("provider", mcp.Enum(forgedomain.GitProviders...),
			mcp.Description(`The git provider. Defaults to "gitlab".`)),
		mcp.WithBoolean("composer",
			mcp.Description("Whether to run composer install after cloning. Defaults to true.")),
		mcp.WithString("deployment_script",
			mcp.Description("Custom deployment script content.")),
		mcp.WithString("nginx_configuration",
			mcp.Description("Custom nginx configuration content.")),
	), s.forgeProvisionSite)
}

func (s *Server) forgeListSites(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sites, err := s.forge.ListSites(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]siteSummary, 0, len(sites))
	for _, site := range sites {
		out = append(out, siteSummary{
			ID:          site.ID,
			Domain:      site.Name,
			Status:      site.Status,
			Repository:  site.Repository,
			Branch:      site.RepositoryBranch,
			PHPVersion:  site.PHPVersion,
			ProjectType: site.ProjectType,
		})
	}
	return jsonResult(map[string]any{"sites": out})
}

func (s *Server) forgeGetSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in siteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	site, err := s.forge.GetSite(ctx, in.SiteID)
	if err != nil {
		return nil, err
	}
	return jsonResult(newSiteDetail(site))
}

func (s *Server) forgeGetSiteDomains(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in siteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	domains, err := s.forge.GetSiteDomains(ctx, in.SiteID)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"site_id": in.SiteID, "domains": domains})
}

func (s *Server) forgeDeleteSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in siteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	if err := s.forge.DeleteSite(ctx, in.SiteID); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"success": true, "site_id": in.SiteID})
}

func (s *Server) forgeCreateSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in createSiteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	isolated := true
	if in.Isolated != nil {
		isolated = *in.Isolated
	}

	site, err := s.forge.CreateSite(ctx, forgedomain.CreateSiteInput{
		Domain:      in.Domain,
		ProjectType: in.ProjectType,
		PHPVersion:  in.PHPVersion,
		Isolated:    isolated,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"site_id":     site.ID,
		"domain":      site.Name,
		"status":      site.Status,
		"php_version": site.PHPVersion,
	})
}

func (s *Server) forgeInstallGitRepository(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in installRepositoryRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	branch := in.Branch
	if branch == "" {
		branch = forgedomain.DefaultBranch
	}

	err := s.forge.InstallGitRepository(ctx, in.SiteID, forgedomain.GitRepositoryInput{
		Provider:   in.Provider,
		Repository: in.Repository,
		Branch:     branch,
		Composer:   true,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{
		"success":    true,
		"site_id":    in.SiteID,
		"repository": in.Repository,
		"branch":     branch,
	})
}

func (s *Server) forgeSetupSSL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in setupSSLRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	if err := s.forge.ObtainLetsEncryptCertificate(ctx, in.SiteID, in.Domain); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"success": true, "site_id": in.SiteID, "domain": in.Domain})
}

func (s *Server) forgeUpdateDeploymentScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in deploymentScriptRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	if err := s.forge.UpdateDeploymentScript(ctx, in.SiteID, in.Script); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"success": true, "site_id": in.SiteID})
}

func (s *Server) forgeGetDeploymentScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in siteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	script, err := s.forge.GetDeploymentScript(ctx, in.SiteID)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"site_id": in.SiteID, "script": script})
}

func (s *Server) forgeDeploySite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in siteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	if err := s.forge.DeploySite(ctx, in.SiteID); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"success": true, "site_id": in.SiteID})
}

func (s *Server) forgeUpdateNginxConfiguration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in nginxConfigurationRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	if err := s.forge.UpdateNginxConfiguration(ctx, in.SiteID, in.Configuration); err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"success": true, "site_id": in.SiteID})
}

func (s *Server) forgeGetNginxConfiguration(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in siteRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	configuration, err := s.forge.GetNginxConfiguration(ctx, in.SiteID)
	if err != nil {
		return nil, err
	}
	return jsonResult(map[string]any{"site_id": in.SiteID, "configuration": configuration})
}

func (s *Server) forgeProvisionSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in forgedomain.ProvisionRequest
	if err := s.bind(req, &in); err != nil {
		return nil, err
	}
	result, err := s.forge.Provision(ctx, in)
	if err != nil {
		return nil, err
	}
	return jsonResult(result)
}
