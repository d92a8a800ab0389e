package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/app"
	"github.com/trebuchet-org/treb-registry/internal/cli/render"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// parseName accepts component names in any case
func parseName(arg string) (domain.Name, error) {
	name := domain.Name(strings.ToUpper(strings.TrimSpace(arg)))
	if err := name.Validate(); err != nil {
		return "", err
	}
	return name, nil
}

func parseAddress(what, arg string) (common.Address, error) {
	if !common.IsHexAddress(arg) {
		return common.Address{}, fmt.Errorf("invalid %s address %q: %w", what, arg, domain.ErrInvalidArgument)
	}
	return common.HexToAddress(arg), nil
}

// printJSON writes v indented to the command output
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// registeredNames lists every registered component name
func registeredNames(ctx context.Context, a *app.App) ([]domain.Name, error) {
	res, err := a.ListComponents.Run(ctx, usecase.ListComponentsParams{})
	if err != nil {
		return nil, err
	}
	return lo.Map(res.Components, func(c *models.Component, _ int) domain.Name {
		return c.Name
	}), nil
}

// withSuggestions adds a "did you mean" hint to not found errors
func withSuggestions(ctx context.Context, a *app.App, name domain.Name, err error) error {
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	names, lerr := registeredNames(ctx, a)
	if lerr != nil {
		return err
	}
	candidates := lo.Map(names, func(n domain.Name, _ int) string { return n.String() })
	if hint := render.FormatSuggestions(render.Suggest(name.String(), candidates)); hint != "" {
		return fmt.Errorf("%w. %s", err, hint)
	}
	return err
}

// nameArg returns the name given as the first argument, or lets the user
// pick a registered one when none was given.
func nameArg(cmd *cobra.Command, a *app.App, args []string, prompt string) (domain.Name, error) {
	if len(args) > 0 {
		return parseName(args[0])
	}
	if a.Config.NonInteractive {
		return "", fmt.Errorf("component name is required in non-interactive mode: %w", domain.ErrInvalidArgument)
	}
	names, err := registeredNames(cmd.Context(), a)
	if err != nil {
		return "", err
	}
	return a.Selector.SelectName(prompt, names)
}
