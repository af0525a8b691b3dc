package main

import (
	"bufio"
	"fmt"
	"strings"
	"text/tabwriter"

	forgedomain "github.com/smallbiznis/pike/internal/forge/domain"
	"github.com/urfave/cli/v2"
)

func forgeCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "forge",
		Usage: "manage sites on the configured Laravel Forge server",
		Subcommands: []*cli.Command{
			{
				Name:   "sites",
				Usage:  "list all sites on the server",
				Action: action(open, listSites),
			},
			{
				Name:      "site",
				Usage:     "show a site",
				ArgsUsage: "<site_id>",
				Action:    action(open, showSite),
			},
			{
				Name:      "domains",
				Usage:     "list all domains (primary, aliases and certificates) for a site",
				ArgsUsage: "<site_id>",
				Action:    action(open, siteDomains),
			},
			{
				Name:      "delete",
				Usage:     "delete a site (irreversible)",
				ArgsUsage: "<site_id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
				},
				Action: action(open, deleteSite),
			},
			{
				Name:      "create",
				Usage:     "create a new site with quick deploy enabled",
				ArgsUsage: "<domain>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "project-type", Value: forgedomain.DefaultProjectType, Usage: "php, html, symfony, symfony_dev or symfony_four"},
					&cli.StringFlag{Name: "php-version", Value: forgedomain.DefaultPHPVersion},
					&cli.BoolFlag{Name: "no-isolation", Usage: "disable PHP user isolation"},
				},
				Action: action(open, createSite),
			},
			{
				Name:      "install-repo",
				Usage:     "install a git repository on a site",
				ArgsUsage: "<site_id> <repository>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "branch", Value: forgedomain.DefaultBranch},
					&cli.StringFlag{Name: "provider", Value: forgedomain.DefaultProvider, Usage: "github, gitlab, bitbucket or custom"},
				},
				Action: action(open, installRepository),
			},
			{
				Name:      "ssl",
				Usage:     "obtain a Let's Encrypt certificate for a site",
				ArgsUsage: "<site_id> <domain>",
				Action:    action(open, setupSSL),
			},
			{
				Name:      "deploy-script",
				Usage:     "print the deployment script of a site",
				ArgsUsage: "<site_id>",
				Action:    action(open, showDeploymentScript),
			},
			{
				Name:      "update-deploy-script",
				Usage:     "replace the deployment script of a site",
				ArgsUsage: "<site_id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "script-file", Required: true, Usage: "file holding the deployment script"},
				},
				Action: action(open, updateDeploymentScript),
			},
			{
				Name:      "nginx",
				Usage:     "print the nginx configuration of a site",
				ArgsUsage: "<site_id>",
				Action:    action(open, showNginxConfiguration),
			},
			{
				Name:      "update-nginx",
				Usage:     "replace the nginx configuration of a site",
				ArgsUsage: "<site_id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config-file", Required: true, Usage: "file holding the nginx configuration"},
				},
				Action: action(open, updateNginxConfiguration),
			},
			{
				Name:      "deploy",
				Usage:     "trigger a deployment",
				ArgsUsage: "<site_id>",
				Action:    action(open, deploySite),
			},
			{
				Name:      "provision",
				Usage:     "create a site, install the repository, obtain SSL and deploy",
				ArgsUsage: "<domain> <repository>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "branch", Value: forgedomain.DefaultBranch},
					&cli.StringFlag{Name: "project-type", Value: forgedomain.DefaultProjectType},
					&cli.StringFlag{Name: "php-version", Value: forgedomain.DefaultPHPVersion},
					&cli.StringFlag{Name: "provider", Value: forgedomain.DefaultProvider},
					&cli.BoolFlag{Name: "no-isolation", Usage: "disable PHP user isolation"},
					&cli.BoolFlag{Name: "no-composer", Usage: "skip composer install after cloning"},
					&cli.StringFlag{Name: "deploy-script-file", Usage: "file holding the deployment script"},
					&cli.StringFlag{Name: "nginx-config-file", Usage: "file holding the nginx configuration"},
				},
				Action: action(open, provisionSite),
			},
		},
	}
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func listSites(c *cli.Context, svc *services) error {
	sites, err := svc.Forge.ListSites(c.Context)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		printf(c, "No sites found on this server.\n")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDOMAIN\tSTATUS\tREPOSITORY\tBRANCH\tPHP VERSION")
	for _, site := range sites {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			site.ID, site.Name, orDash(site.Status), orDash(site.Repository), orDash(site.RepositoryBranch), orDash(site.PHPVersion))
	}
	return w.Flush()
}

func showSite(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	site, err := svc.Forge.GetSite(c.Context, id)
	if err != nil {
		return err
	}
	return printJSON(c, site)
}

func siteDomains(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	domains, err := svc.Forge.GetSiteDomains(c.Context, id)
	if err != nil {
		return err
	}
	for _, name := range domains {
		printf(c, "%s\n", name)
	}
	return nil
}

func deleteSite(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	if !c.Bool("yes") {
		printf(c, "Are you sure you want to delete site %d? This action is irreversible. [y/N] ", id)
		answer, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			printf(c, "Cancelled.\n")
			return nil
		}
	}
	if err := svc.Forge.DeleteSite(c.Context, id); err != nil {
		return err
	}
	printf(c, "Site %d deleted.\n", id)
	return nil
}

func createSite(c *cli.Context, svc *services) error {
	name, err := requiredArg(c, 0, "domain")
	if err != nil {
		return err
	}
	site, err := svc.Forge.CreateSite(c.Context, forgedomain.CreateSiteInput{
		Domain:      name,
		ProjectType: c.String("project-type"),
		PHPVersion:  c.String("php-version"),
		Isolated:    !c.Bool("no-isolation"),
	})
	if err != nil {
		return err
	}
	printf(c, "Site created: id=%d domain=%s status=%s\n", site.ID, site.Name, orDash(site.Status))
	return nil
}

func installRepository(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	repository, err := requiredArg(c, 1, "repository")
	if err != nil {
		return err
	}
	err = svc.Forge.InstallGitRepository(c.Context, id, forgedomain.GitRepositoryInput{
		Provider:   c.String("provider"),
		Repository: repository,
		Branch:     c.String("branch"),
		Composer:   true,
	})
	if err != nil {
		return err
	}
	printf(c, "Repository %s (%s) installed on site %d.\n", repository, c.String("branch"), id)
	return nil
}

func setupSSL(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	name, err := requiredArg(c, 1, "domain")
	if err != nil {
		return err
	}
	if err := svc.Forge.ObtainLetsEncryptCertificate(c.Context, id, name); err != nil {
		return err
	}
	printf(c, "Certificate requested for %s on site %d.\n", name, id)
	return nil
}

func showDeploymentScript(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	script, err := svc.Forge.GetDeploymentScript(c.Context, id)
	if err != nil {
		return err
	}
	printf(c, "%s\n", script)
	return nil
}

func updateDeploymentScript(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	script, err := readFile(c.String("script-file"))
	if err != nil {
		return err
	}
	if script == nil {
		return fmt.Errorf("%w: --script-file", errMissingArgument)
	}
	if err := svc.Forge.UpdateDeploymentScript(c.Context, id, *script); err != nil {
		return err
	}
	printf(c, "Deployment script updated for site %d.\n", id)
	return nil
}

func showNginxConfiguration(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	configuration, err := svc.Forge.GetNginxConfiguration(c.Context, id)
	if err != nil {
		return err
	}
	printf(c, "%s\n", configuration)
	return nil
}

func updateNginxConfiguration(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	configuration, err := readFile(c.String("config-file"))
	if err != nil {
		return err
	}
	if configuration == nil {
		return fmt.Errorf("%w: --config-file", errMissingArgument)
	}
	if err := svc.Forge.UpdateNginxConfiguration(c.Context, id, *configuration); err != nil {
		return err
	}
	printf(c, "Nginx configuration updated for site %d.\n", id)
	return nil
}

func deploySite(c *cli.Context, svc *services) error {
	id, err := siteIDArg(c)
	if err != nil {
		return err
	}
	if err := svc.Forge.DeploySite(c.Context, id); err != nil {
		return err
	}
	printf(c, "Deployment triggered for site %d.\n", id)
	return nil
}

func provisionSite(c *cli.Context, svc *services) error {
	name, err := requiredArg(c, 0, "domain")
	if err != nil {
		return err
	}
	repository, err := requiredArg(c, 1, "repository")
	if err != nil {
		return err
	}
	script, err := readFile(c.String("deploy-script-file"))
	if err != nil {
		return err
	}
	nginx, err := readFile(c.String("nginx-config-file"))
	if err != nil {
		return err
	}

	isolated := !c.Bool("no-isolation")
	composer := !c.Bool("no-composer")
	printf(c, "Provisioning site: %s...\n", name)

	result, err := svc.Forge.Provision(c.Context, forgedomain.ProvisionRequest{
		Domain:             name,
		Repository:         repository,
		Branch:             c.String("branch"),
		ProjectType:        c.String("project-type"),
		PHPVersion:         c.String("php-version"),
		Isolated:           &isolated,
		Provider:           c.String("provider"),
		Composer:           &composer,
		DeploymentScript:   script,
		NginxConfiguration: nginx,
	})
	if err != nil {
		return err
	}

	printf(c, "Site provisioned: id=%d domain=%s\n", result.SiteID, result.Domain)
	printf(c, "Steps completed:\n")
	for _, step := range result.Steps {
		printf(c, "  %s: %s\n", step.Name, step.Status)
	}
	return nil
}
