package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCase = cases.Title(language.English)

var pastTense = map[usecase.RoleAction]string{
	usecase.RoleGrant:    "granted",
	usecase.RoleRenounce: "renounced",
}

// ResultRenderer renders the outcome of mutating commands
type ResultRenderer struct {
	out io.Writer
}

// NewResultRenderer creates a new result renderer
func NewResultRenderer(out io.Writer) *ResultRenderer {
	return &ResultRenderer{out: out}
}

// RenderDeploy renders a deployed implementation
func (r *ResultRenderer) RenderDeploy(res *usecase.DeployArtifactResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s", res.Artifact)))
	fmt.Fprintf(r.out, "  Address: %s\n", res.Address.Hex())
	fmt.Fprintf(r.out, "  Deployer: %s\n", res.Deployer.Hex())
	return nil
}

// RenderRegister renders a registered component
func (r *ResultRenderer) RenderRegister(res *usecase.RegisterComponentResult) error {
	verb := "Registered"
	if res.Replaced != nil {
		verb = "Re-registered"
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s %s (%s)", verb, res.Component.Name, strings.ToLower(string(res.Component.Kind)))))
	r.component(res.Component)
	if res.Replaced != nil {
		fmt.Fprintf(r.out, "  Replaced: %s\n", res.Replaced.Address.Hex())
		fmt.Fprintln(r.out, FormatWarning("Components caching this name keep the old address until re-injected"))
	}
	return nil
}

// RenderUpgrade renders an implementation swap
func (r *ResultRenderer) RenderUpgrade(res *usecase.UpgradeComponentResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Upgraded %s", res.Component.Name)))
	fmt.Fprintf(r.out, "  Proxy: %s\n", res.Component.Address.Hex())
	fmt.Fprintf(r.out, "  Implementation: %s -> %s\n", res.Previous.Hex(), res.Component.Implementation.Hex())
	if res.Deployed {
		fmt.Fprintf(r.out, "  %s\n", labelStyle.Sprint("implementation deployed from artifact"))
	}
	return nil
}

// RenderInject renders the components whose dependencies were refreshed
func (r *ResultRenderer) RenderInject(res *usecase.InjectDependenciesResult) error {
	if len(res.Injected) == 0 {
		fmt.Fprintln(r.out, "No injectable components")
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Injected dependencies into %d component(s)", len(res.Injected))))
	for _, name := range res.Injected {
		fmt.Fprintf(r.out, "  - %s\n", name)
	}
	return nil
}

// RenderApply renders a manifest run
func (r *ResultRenderer) RenderApply(res *usecase.ApplyManifestResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Applied manifest: %d component(s) registered", len(res.Registered))))

	if len(res.Deployed) > 0 {
		fmt.Fprintln(r.out, "\nDeployed implementations:")
		names := lo.Keys(res.Deployed)
		sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
		for _, name := range names {
			fmt.Fprintf(r.out, "  %s %s %s\n", name, labelStyle.Sprint("->"), res.Deployed[name].Hex())
		}
	}

	fmt.Fprintln(r.out, "\nRegistered:")
	for _, c := range res.Registered {
		fmt.Fprintf(r.out, "  %-28s %-8s %s\n", c.Name, strings.ToLower(string(c.Kind)), c.Address.Hex())
	}

	if len(res.Injected) > 0 {
		fmt.Fprintln(r.out, "\nInjected:")
		for _, name := range res.Injected {
			fmt.Fprintf(r.out, "  - %s\n", name)
		}
	}
	return nil
}

// RenderRoles renders a role check, change or holder list
func (r *ResultRenderer) RenderRoles(res *usecase.ManageRolesResult) error {
	switch res.Action {
	case usecase.RoleGrant, usecase.RoleRenounce:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s %s for %s", titleCase.String(pastTense[res.Action]), res.Role, res.Account.Hex())))
	case usecase.RoleCheck:
		if res.HasRole {
			fmt.Fprintf(r.out, "%s has %s\n", res.Account.Hex(), res.Role)
		} else {
			fmt.Fprintf(r.out, "%s does not have %s\n", res.Account.Hex(), res.Role)
		}
		return nil
	}

	fmt.Fprintf(r.out, "\n%s holders:\n", res.Role)
	if len(res.Holders) == 0 {
		fmt.Fprintln(r.out, FormatWarning("none, the registry can no longer be administered"))
		return nil
	}
	for _, holder := range res.Holders {
		fmt.Fprintf(r.out, "  - %s\n", holder.Hex())
	}
	return nil
}

// RenderTransfer renders a proxy admin handover
func (r *ResultRenderer) RenderTransfer(c *models.Component) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Transferred proxy admin of %s", c.Name)))
	fmt.Fprintf(r.out, "  Proxy: %s\n", c.Address.Hex())
	fmt.Fprintf(r.out, "  New admin: %s\n", c.ProxyAdmin.Hex())
	fmt.Fprintln(r.out, FormatWarning("The registry can no longer upgrade this component"))
	return nil
}

func (r *ResultRenderer) component(c *models.Component) {
	fmt.Fprintf(r.out, "  Address: %s\n", c.Address.Hex())
	if c.IsProxied() {
		fmt.Fprintf(r.out, "  Implementation: %s\n", c.Implementation.Hex())
	}
}
