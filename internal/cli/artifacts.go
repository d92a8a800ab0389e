package cli

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-registry/internal/domain"
)

type artifactInfo struct {
	Artifact     string        `json:"artifact"`
	Injectable   bool          `json:"injectable"`
	Dependencies []domain.Name `json:"dependencies,omitempty"`
}

// NewArtifactsCmd creates the artifacts command
func NewArtifactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts",
		Short: "List the artifacts that can be deployed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			infos := lo.Map(app.Catalog.Artifacts(), func(artifact string, _ int) artifactInfo {
				deps, ok := app.Catalog.Dependencies(artifact)
				return artifactInfo{Artifact: artifact, Injectable: ok, Dependencies: deps}
			})

			if app.Config.JSON {
				return printJSON(cmd, infos)
			}

			for _, info := range infos {
				if !info.Injectable {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", info.Artifact)
					continue
				}
				deps := lo.Map(info.Dependencies, func(n domain.Name, _ int) string { return n.String() })
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s depends on %s\n", info.Artifact, strings.Join(deps, ", "))
			}
			return nil
		},
	}
}
