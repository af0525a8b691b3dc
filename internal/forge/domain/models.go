package domain

import (
	"bytes"
	"encoding/json"
)

const (
	DefaultBranch      = "main"
	DefaultProjectType = "php"
	DefaultPHPVersion  = "php83"
	DefaultProvider    = "gitlab"
	DefaultDirectory   = "/public"

	StepStatusSuccess = "success"
)

// Step names in the order a provisioning run executes them.
const (
	StepCreateSite               = "create_site"
	StepInstallGitRepository     = "install_git_repository"
	StepObtainSSLCertificate     = "obtain_ssl_certificate"
	StepUpdateDeploymentScript   = "update_deployment_script"
	StepUpdateNginxConfiguration = "update_nginx_configuration"
	StepDeploySite               = "deploy_site"
)

// ProjectTypes lists the project types the remote API accepts.
var ProjectTypes = []string{"php", "html", "symfony", "symfony_dev", "symfony_four"}

// GitProviders lists the repository providers the remote API accepts.
var GitProviders = []string{"github", "gitlab", "bitbucket", "custom"}

// Site is a website hosted on the configured server.
type Site struct {
	ID                 int64    `json:"id"`
	ServerID           int64    `json:"server_id,omitempty"`
	Name               string   `json:"name"`
	Aliases            []string `json:"aliases"`
	Directory          string   `json:"directory,omitempty"`
	Wildcards          bool     `json:"wildcards"`
	Status             string   `json:"status,omitempty"`
	Repository         string   `json:"repository,omitempty"`
	RepositoryProvider string   `json:"repository_provider,omitempty"`
	RepositoryBranch   string   `json:"repository_branch,omitempty"`
	RepositoryStatus   string   `json:"repository_status,omitempty"`
	QuickDeploy        bool     `json:"quick_deploy"`
	DeploymentStatus   string   `json:"deployment_status,omitempty"`
	ProjectType        string   `json:"project_type,omitempty"`
	PHPVersion         string   `json:"php_version,omitempty"`
	Username           string   `json:"username,omitempty"`
	DeploymentURL      string   `json:"deployment_url,omitempty"`
	IsSecured          bool     `json:"is_secured"`
	Isolated           bool     `json:"isolated"`
	Tags               []string `json:"tags,omitempty"`
	CreatedAt          string   `json:"created_at,omitempty"`
}

// Certificate is a TLS certificate attached to a site.
type Certificate struct {
	ID            int64  `json:"id"`
	Domain        string `json:"domain"`
	Type          string `json:"type,omitempty"`
	RequestStatus string `json:"request_status,omitempty"`
	Status        string `json:"status,omitempty"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// CreateSiteInput is the payload for creating a site.
type CreateSiteInput struct {
	Domain      string `json:"domain"`
	ProjectType string `json:"project_type"`
	PHPVersion  string `json:"php_version"`
	Directory   string `json:"directory"`
	Isolated    bool   `json:"isolated"`
}

// GitRepositoryInput is the payload for attaching a repository to a site.
type GitRepositoryInput struct {
	Provider   string `json:"provider"`
	Repository string `json:"repository"`
	Branch     string `json:"branch"`
	Composer   bool   `json:"composer"`
}

// ProvisionRequest describes a full site provisioning run.
type ProvisionRequest struct {
	Domain             string  `json:"domain" validate:"required,max=253"`
	Repository         string  `json:"repository" validate:"required,max=255"`
	Branch             string  `json:"branch,omitempty" validate:"omitempty,max=255"`
	ProjectType        string  `json:"project_type,omitempty" validate:"omitempty,oneof=php html symfony symfony_dev symfony_four"`
	PHPVersion         string  `json:"php_version,omitempty" validate:"omitempty,max=10"`
	Isolated           *bool   `json:"isolated,omitempty"`
	Provider           string  `json:"provider,omitempty" validate:"omitempty,oneof=github gitlab bitbucket custom"`
	Composer           *bool   `json:"composer,omitempty"`
	DeploymentScript   *string `json:"deployment_script,omitempty"`
	NginxConfiguration *string `json:"nginx_configuration,omitempty"`
}

// StepResult is the status of one completed provisioning step.
type StepResult struct {
	Name   string
	Status string
}

// Steps is an ordered list of completed steps. It encodes as a JSON object
// keyed by step name, preserving execution order.
type Steps []StepResult

func (s Steps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(step.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(step.Status)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Names returns step names in execution order.
func (s Steps) Names() []string {
	names := make([]string, 0, len(s))
	for _, step := range s {
		names = append(names, step.Name)
	}
	return names
}

// ProvisioningResult is returned only when every enabled step succeeded.
type ProvisioningResult struct {
	SiteID int64  `json:"site_id"`
	Domain string `json:"domain"`
	Steps  Steps  `json:"steps"`
}
