package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/smallbiznis/pike/internal/config"
	"github.com/smallbiznis/pike/internal/forge/domain"
	"github.com/smallbiznis/pike/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

// Client is a Forge REST API v1 client. Requests are never retried.
type Client struct {
	http *resty.Client
	log  *zap.Logger
}

var _ domain.Client = (*Client)(nil)

func New(p Params) domain.Client {
	return NewClient(p.Config.Forge, p.Log)
}

// NewClient builds a client against cfg.BaseURL authenticated with cfg.Token.
func NewClient(cfg config.ForgeConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(0)

	return &Client{http: rc, log: log.Named("forge.client")}
}

type sitesEnvelope struct {
	Sites []domain.Site `json:"sites"`
}

type siteEnvelope struct {
	Site *domain.Site `json:"site"`
}

type certificatesEnvelope struct {
	Certificates []domain.Certificate `json:"certificates"`
}

func sitesPath(serverID int64) string {
	return fmt.Sprintf("/servers/%d/sites", serverID)
}

func sitePath(serverID, siteID int64) string {
	return fmt.Sprintf("/servers/%d/sites/%d", serverID, siteID)
}

func (c *Client) ListSites(ctx context.Context, serverID int64) ([]domain.Site, error) {
	var out sitesEnvelope
	if err := c.do(ctx, http.MethodGet, sitesPath(serverID), nil, &out); err != nil {
		return nil, err
	}
	if out.Sites == nil {
		return []domain.Site{}, nil
	}
	return out.Sites, nil
}

func (c *Client) GetSite(ctx context.Context, serverID, siteID int64) (*domain.Site, error) {
	return c.site(ctx, http.MethodGet, sitePath(serverID, siteID), nil)
}

func (c *Client) CreateSite(ctx context.Context, serverID int64, input domain.CreateSiteInput) (*domain.Site, error) {
	return c.site(ctx, http.MethodPost, sitesPath(serverID), input)
}

func (c *Client) DeleteSite(ctx context.Context, serverID, siteID int64) error {
	return c.do(ctx, http.MethodDelete, sitePath(serverID, siteID), nil, nil)
}

func (c *Client) EnableQuickDeploy(ctx context.Context, serverID, siteID int64) error {
	return c.do(ctx, http.MethodPost, sitePath(serverID, siteID)+"/deployment", nil, nil)
}

func (c *Client) ListCertificates(ctx context.Context, serverID, siteID int64) ([]domain.Certificate, error) {
	var out certificatesEnvelope
	if err := c.do(ctx, http.MethodGet, sitePath(serverID, siteID)+"/certificates", nil, &out); err != nil {
		return nil, err
	}
	return out.Certificates, nil
}

func (c *Client) AddSiteAliases(ctx context.Context, serverID, siteID int64, aliases []string) (*domain.Site, error) {
	body := map[string]any{"aliases": aliases}
	return c.site(ctx, http.MethodPut, sitePath(serverID, siteID)+"/aliases", body)
}

func (c *Client) InstallGitRepository(ctx context.Context, serverID, siteID int64, input domain.GitRepositoryInput) error {
	return c.do(ctx, http.MethodPost, sitePath(serverID, siteID)+"/git", input, nil)
}

func (c *Client) ObtainLetsEncryptCertificate(ctx context.Context, serverID, siteID int64, domains []string) error {
	body := map[string]any{"domains": domains}
	return c.do(ctx, http.MethodPost, sitePath(serverID, siteID)+"/certificates/letsencrypt", body, nil)
}

func (c *Client) GetDeploymentScript(ctx context.Context, serverID, siteID int64) (string, error) {
	return c.text(ctx, sitePath(serverID, siteID)+"/deployment/script")
}

func (c *Client) UpdateDeploymentScript(ctx context.Context, serverID, siteID int64, script string) error {
	body := map[string]any{"content": script}
	return c.do(ctx, http.MethodPut, sitePath(serverID, siteID)+"/deployment/script", body, nil)
}

func (c *Client) DeploySite(ctx context.Context, serverID, siteID int64) error {
	return c.do(ctx, http.MethodPost, sitePath(serverID, siteID)+"/deployment/deploy", nil, nil)
}

func (c *Client) GetNginxConfiguration(ctx context.Context, serverID, siteID int64) (string, error) {
	return c.text(ctx, sitePath(serverID, siteID)+"/nginx")
}

func (c *Client) UpdateNginxConfiguration(ctx context.Context, serverID, siteID int64, content string) error {
	body := map[string]any{"content": content}
	return c.do(ctx, http.MethodPut, sitePath(serverID, siteID)+"/nginx", body, nil)
}

func (c *Client) site(ctx context.Context, method, path string, body any) (*domain.Site, error) {
	var out siteEnvelope
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	if out.Site == nil {
		return nil, fmt.Errorf("%w: %s %s: missing site", domain.ErrDecodeResponse, method, path)
	}
	return out.Site, nil
}

func (c *Client) text(ctx context.Context, path string) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return resp.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrDecodeResponse, method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		logger.WithContext(ctx, c.log).Warn("forge request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("forge %s %s: %w", method, path, err)
	}

	logger.WithContext(ctx, c.log).Debug("forge request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.IsError() {
		return nil, &domain.RemoteError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       strings.TrimSpace(resp.String()),
		}
	}
	return resp, nil
}
