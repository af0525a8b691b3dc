package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/forge/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testServerID int64 = 123

type mockClient struct {
	mock.Mock
}

func (m *mockClient) ListSites(ctx context.Context, serverID int64) ([]domain.Site, error) {
	args := m.Called(ctx, serverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Site), args.Error(1)
}

func (m *mockClient) GetSite(ctx context.Context, serverID, siteID int64) (*domain.Site, error) {
	args := m.Called(ctx, serverID, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *mockClient) CreateSite(ctx context.Context, serverID int64, input domain.CreateSiteInput) (*domain.Site, error) {
	args := m.Called(ctx, serverID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *mockClient) DeleteSite(ctx context.Context, serverID, siteID int64) error {
	return m.Called(ctx, serverID, siteID).Error(0)
}

func (m *mockClient) EnableQuickDeploy(ctx context.Context, serverID, siteID int64) error {
	return m.Called(ctx, serverID, siteID).Error(0)
}

func (m *mockClient) ListCertificates(ctx context.Context, serverID, siteID int64) ([]domain.Certificate, error) {
	args := m.Called(ctx, serverID, siteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Certificate), args.Error(1)
}

func (m *mockClient) AddSiteAliases(ctx context.Context, serverID, siteID int64, aliases []string) (*domain.Site, error) {
	args := m.Called(ctx, serverID, siteID, aliases)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Site), args.Error(1)
}

func (m *mockClient) InstallGitRepository(ctx context.Context, serverID, siteID int64, input domain.GitRepositoryInput) error {
	return m.Called(ctx, serverID, siteID, input).Error(0)
}

func (m *mockClient) ObtainLetsEncryptCertificate(ctx context.Context, serverID, siteID int64, domains []string) error {
	return m.Called(ctx, serverID, siteID, domains).Error(0)
}

func (m *mockClient) GetDeploymentScript(ctx context.Context, serverID, siteID int64) (string, error) {
	args := m.Called(ctx, serverID, siteID)
	return args.String(0), args.Error(1)
}

func (m *mockClient) UpdateDeploymentScript(ctx context.Context, serverID, siteID int64, script string) error {
	return m.Called(ctx, serverID, siteID, script).Error(0)
}

func (m *mockClient) DeploySite(ctx context.Context, serverID, siteID int64) error {
	return m.Called(ctx, serverID, siteID).Error(0)
}

func (m *mockClient) GetNginxConfiguration(ctx context.Context, serverID, siteID int64) (string, error) {
	args := m.Called(ctx, serverID, siteID)
	return args.String(0), args.Error(1)
}

func (m *mockClient) UpdateNginxConfiguration(ctx context.Context, serverID, siteID int64, content string) error {
	return m.Called(ctx, serverID, siteID, content).Error(0)
}

func newTestService(client domain.Client, serverID int64) domain.Service {
	cfg := config.Config{}
	cfg.Forge.ServerID = serverID
	return NewService(Params{Config: cfg, Client: client, Log: zap.NewNop()})
}

func TestListSites(t *testing.T) {
	client := new(mockClient)
	client.On("ListSites", mock.Anything, testServerID).
		Return([]domain.Site{{ID: 1, Name: "example.com"}}, nil)

	sites, err := newTestService(client, testServerID).ListSites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "example.com", sites[0].Name)
	client.AssertExpectations(t)
}

func TestNotConfigured(t *testing.T) {
	client := new(mockClient)
	svc := newTestService(client, 0)

	_, err := svc.ListSites(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = svc.Provision(context.Background(), domain.ProvisionRequest{Domain: "example.com", Repository: "acme/app"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	client.AssertNotCalled(t, "CreateSite", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvalidSiteID(t *testing.T) {
	svc := newTestService(new(mockClient), testServerID)

	_, err := svc.GetSite(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidSiteID)
	assert.ErrorIs(t, svc.DeploySite(context.Background(), -1), domain.ErrInvalidSiteID)
}

func TestCreateSite_EnablesQuickDeploy(t *testing.T) {
	client := new(mockClient)
	client.On("CreateSite", mock.Anything, testServerID, domain.CreateSiteInput{
		Domain:      "example.com",
		ProjectType: "php",
		PHPVersion:  "php83",
		Directory:   "/public",
		Isolated:    true,
	}).Return(&domain.Site{ID: 7, Name: "example.com"}, nil)
	client.On("EnableQuickDeploy", mock.Anything, testServerID, int64(7)).Return(nil)

	site, err := newTestService(client, testServerID).CreateSite(context.Background(), domain.CreateSiteInput{
		Domain:   " example.com ",
		Isolated: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), site.ID)
	client.AssertExpectations(t)
}

func TestGetSiteDomains(t *testing.T) {
	t.Run("name then aliases then certificates", func(t *testing.T) {
		client := new(mockClient)
		client.On("GetSite", mock.Anything, testServerID, int64(1)).
			Return(&domain.Site{ID: 1, Name: "example.com", Aliases: []string{"www.example.com"}}, nil)
		client.On("ListCertificates", mock.Anything, testServerID, int64(1)).
			Return([]domain.Certificate{{Domain: "example.com"}, {Domain: "custom.example.com"}}, nil)

		domains, err := newTestService(client, testServerID).GetSiteDomains(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com", "www.example.com", "custom.example.com"}, domains)
	})

	t.Run("primary only", func(t *testing.T) {
		client := new(mockClient)
		client.On("GetSite", mock.Anything, testServerID, int64(1)).
			Return(&domain.Site{ID: 1, Name: "example.com", Aliases: []string{}}, nil)
		client.On("ListCertificates", mock.Anything, testServerID, int64(1)).
			Return([]domain.Certificate{{Domain: "example.com"}}, nil)

		domains, err := newTestService(client, testServerID).GetSiteDomains(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"example.com"}, domains)
	})

	t.Run("remote failure", func(t *testing.T) {
		remote := &domain.RemoteError{Method: http.MethodGet, Path: "/servers/123/sites/1", StatusCode: http.StatusNotFound}
		client := new(mockClient)
		client.On("GetSite", mock.Anything, testServerID, int64(1)).Return(nil, remote)

		_, err := newTestService(client, testServerID).GetSiteDomains(context.Background(), 1)
		assert.ErrorIs(t, err, remote)
	})
}

func TestPassThroughs(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("AddSiteAliases", mock.Anything, testServerID, int64(1), []string{"www.example.com"}).
		Return(&domain.Site{ID: 1, Aliases: []string{"www.example.com"}}, nil)
	client.On("InstallGitRepository", mock.Anything, testServerID, int64(1), domain.GitRepositoryInput{
		Provider: "gitlab", Repository: "acme/app", Branch: "main", Composer: true,
	}).Return(nil)
	client.On("ObtainLetsEncryptCertificate", mock.Anything, testServerID, int64(1), []string{"example.com"}).Return(nil)
	client.On("UpdateDeploymentScript", mock.Anything, testServerID, int64(1), "git pull").Return(nil)
	client.On("GetDeploymentScript", mock.Anything, testServerID, int64(1)).Return("git pull", nil)
	client.On("DeploySite", mock.Anything, testServerID, int64(1)).Return(nil)
	client.On("UpdateNginxConfiguration", mock.Anything, testServerID, int64(1), "server {}").Return(nil)
	client.On("GetNginxConfiguration", mock.Anything, testServerID, int64(1)).Return("server {}", nil)
	client.On("DeleteSite", mock.Anything, testServerID, int64(1)).Return(nil)

	svc := newTestService(client, testServerID)

	site, err := svc.AddSiteAliases(ctx, 1, []string{"www.example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"www.example.com"}, site.Aliases)

	require.NoError(t, svc.InstallGitRepository(ctx, 1, domain.GitRepositoryInput{Repository: "acme/app", Composer: true}))
	require.NoError(t, svc.ObtainLetsEncryptCertificate(ctx, 1, "example.com"))
	require.NoError(t, svc.UpdateDeploymentScript(ctx, 1, "git pull"))

	script, err := svc.GetDeploymentScript(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "git pull", script)

	require.NoError(t, svc.DeploySite(ctx, 1))
	require.NoError(t, svc.UpdateNginxConfiguration(ctx, 1, "server {}"))

	nginx, err := svc.GetNginxConfiguration(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "server {}", nginx)

	require.NoError(t, svc.DeleteSite(ctx, 1))
	client.AssertExpectations(t)
}

func TestProvision_MinimalRequestRunsFourSteps(t *testing.T) {
	client := new(mockClient)
	client.On("CreateSite", mock.Anything, testServerID, domain.CreateSiteInput{
		Domain:      "example.com",
		ProjectType: "php",
		PHPVersion:  "php83",
		Directory:   "/public",
		Isolated:    true,
	}).Return(&domain.Site{ID: 1, Name: "example.com"}, nil).Once()
	client.On("EnableQuickDeploy", mock.Anything, testServerID, int64(1)).Return(nil).Once()
	client.On("InstallGitRepository", mock.Anything, testServerID, int64(1), domain.GitRepositoryInput{
		Provider: "gitlab", Repository: "user/repo", Branch: "main", Composer: true,
	}).Return(nil).Once()
	client.On("ObtainLetsEncryptCertificate", mock.Anything, testServerID, int64(1), []string{"example.com"}).Return(nil).Once()
	client.On("DeploySite", mock.Anything, testServerID, int64(1)).Return(nil).Once()

	result, err := newTestService(client, testServerID).Provision(context.Background(), domain.ProvisionRequest{
		Domain:     "example.com",
		Repository: "user/repo",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(1), result.SiteID)
	assert.Equal(t, "example.com", result.Domain)
	assert.Equal(t, []string{
		domain.StepCreateSite,
		domain.StepInstallGitRepository,
		domain.StepObtainSSLCertificate,
		domain.StepDeploySite,
	}, result.Steps.Names())

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "UpdateDeploymentScript", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "UpdateNginxConfiguration", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"site_id": 1,
		"domain": "example.com",
		"steps": {
			"create_site": "success",
			"install_git_repository": "success",
			"obtain_ssl_certificate": "success",
			"deploy_site": "success"
		}
	}`, string(raw))
}

func TestProvision_AllStepsInOrder(t *testing.T) {
	var order []string
	record := func(name string) func(mock.Arguments) {
		return func(mock.Arguments) { order = append(order, name) }
	}

	client := new(mockClient)
	client.On("CreateSite", mock.Anything, testServerID, domain.CreateSiteInput{
		Domain:      "example.com",
		ProjectType: "html",
		PHPVersion:  "php82",
		Directory:   "/public",
		Isolated:    false,
	}).Return(&domain.Site{ID: 5}, nil).Run(record("create"))
	client.On("EnableQuickDeploy", mock.Anything, testServerID, int64(5)).Return(nil).Run(record("quick_deploy"))
	client.On("InstallGitRepository", mock.Anything, testServerID, int64(5), domain.GitRepositoryInput{
		Provider: "github", Repository: "user/repo", Branch: "develop", Composer: false,
	}).Return(nil).Run(record("git"))
	client.On("ObtainLetsEncryptCertificate", mock.Anything, testServerID, int64(5), []string{"example.com"}).
		Return(nil).Run(record("ssl"))
	client.On("UpdateDeploymentScript", mock.Anything, testServerID, int64(5), "cd /home/forge && git pull").
		Return(nil).Run(record("script"))
	client.On("UpdateNginxConfiguration", mock.Anything, testServerID, int64(5), "server { listen 80; }").
		Return(nil).Run(record("nginx"))
	client.On("DeploySite", mock.Anything, testServerID, int64(5)).Return(nil).Run(record("deploy"))

	isolated := false
	composer := false
	script := "cd /home/forge && git pull"
	nginx := "server { listen 80; }"
	result, err := newTestService(client, testServerID).Provision(context.Background(), domain.ProvisionRequest{
		Domain:             "example.com",
		Repository:         "user/repo",
		Branch:             "develop",
		ProjectType:        "html",
		PHPVersion:         "php82",
		Isolated:           &isolated,
		Provider:           "github",
		Composer:           &composer,
		DeploymentScript:   &script,
		NginxConfiguration: &nginx,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"create", "quick_deploy", "git", "ssl", "script", "nginx", "deploy"}, order)
	assert.Equal(t, []string{
		domain.StepCreateSite,
		domain.StepInstallGitRepository,
		domain.StepObtainSSLCertificate,
		domain.StepUpdateDeploymentScript,
		domain.StepUpdateNginxConfiguration,
		domain.StepDeploySite,
	}, result.Steps.Names())
	client.AssertExpectations(t)
}

func TestProvision_EmptyScriptStillRuns(t *testing.T) {
	client := new(mockClient)
	client.On("CreateSite", mock.Anything, testServerID, mock.Anything).Return(&domain.Site{ID: 2}, nil)
	client.On("EnableQuickDeploy", mock.Anything, testServerID, int64(2)).Return(nil)
	client.On("InstallGitRepository", mock.Anything, testServerID, int64(2), mock.Anything).Return(nil)
	client.On("ObtainLetsEncryptCertificate", mock.Anything, testServerID, int64(2), mock.Anything).Return(nil)
	client.On("UpdateDeploymentScript", mock.Anything, testServerID, int64(2), "").Return(nil).Once()
	client.On("DeploySite", mock.Anything, testServerID, int64(2)).Return(nil)

	empty := ""
	result, err := newTestService(client, testServerID).Provision(context.Background(), domain.ProvisionRequest{
		Domain:           "example.com",
		Repository:       "user/repo",
		DeploymentScript: &empty,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Steps.Names(), domain.StepUpdateDeploymentScript)
	client.AssertExpectations(t)
}

func TestProvision_FailureAbortsWithoutRollback(t *testing.T) {
	remote := &domain.RemoteError{
		Method:     http.MethodPost,
		Path:       "/servers/123/sites/1/git",
		StatusCode: http.StatusUnprocessableEntity,
		Body:       "Repository not found",
	}

	client := new(mockClient)
	client.On("CreateSite", mock.Anything, testServerID, mock.Anything).Return(&domain.Site{ID: 1}, nil).Once()
	client.On("EnableQuickDeploy", mock.Anything, testServerID, int64(1)).Return(nil).Once()
	client.On("InstallGitRepository", mock.Anything, testServerID, int64(1), mock.Anything).Return(remote).Once()

	result, err := newTestService(client, testServerID).Provision(context.Background(), domain.ProvisionRequest{
		Domain:     "example.com",
		Repository: "user/repo",
	})
	require.Error(t, err)
	assert.Nil(t, result)

	var stepErr *domain.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.StepInstallGitRepository, stepErr.Step)

	var remoteErr *domain.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "Repository not found", remoteErr.Body)

	client.AssertExpectations(t)
	client.AssertNotCalled(t, "ObtainLetsEncryptCertificate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "DeploySite", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "DeleteSite", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_CreateFailure(t *testing.T) {
	remote := &domain.RemoteError{Method: http.MethodPost, Path: "/servers/123/sites", StatusCode: http.StatusInternalServerError}
	client := new(mockClient)
	client.On("CreateSite", mock.Anything, testServerID, mock.Anything).Return(nil, remote).Once()

	result, err := newTestService(client, testServerID).Provision(context.Background(), domain.ProvisionRequest{
		Domain:     "example.com",
		Repository: "user/repo",
	})
	assert.Nil(t, result)

	var stepErr *domain.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.StepCreateSite, stepErr.Step)
	assert.ErrorIs(t, err, remote)
	client.AssertNotCalled(t, "EnableQuickDeploy", mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_RequiresDomainAndRepository(t *testing.T) {
	svc := newTestService(new(mockClient), testServerID)

	_, err := svc.Provision(context.Background(), domain.ProvisionRequest{Repository: "user/repo"})
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)

	_, err = svc.Provision(context.Background(), domain.ProvisionRequest{Domain: "example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
