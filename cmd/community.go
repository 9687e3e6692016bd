package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/community-cli/internal/catalog"
	"github.com/sells-group/community-cli/internal/community"
	"github.com/sells-group/community-cli/internal/orchestrator"
)

var (
	communityZip          string
	communityAudience     string
	communityServiceAreas []string
	communityCity         string
	communityState        string
	communityCategories   []string
	communityForce        bool
	communityJSON         bool
	communityUser         string
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Fetch community content for a zip code",
}

var communityFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch community data by zip, optionally for an audience",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		req := community.Request{
			Zip:            communityZip,
			Audience:       communityAudience,
			ServiceAreas:   communityServiceAreas,
			PreferredCity:  communityCity,
			PreferredState: communityState,
			Options: community.Options{
				Categories:   communityCategories,
				ForceRefresh: communityForce,
			},
		}
		data, err := env.Orchestrator.ByZipAndAudience(ctx, req)
		if err != nil {
			return eris.Wrap(err, "community fetch")
		}
		if data == nil {
			return eris.Errorf("no community data for zip %s", communityZip)
		}

		if communityJSON {
			return writeJSON(cmd.OutOrStdout(), data)
		}
		return writeData(cmd.OutOrStdout(), env.Catalog, data)
	},
}

var communityContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Build this turn's content context for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		cc, err := env.Orchestrator.ContentContext(ctx, orchestrator.ContextParams{
			UserID:         communityUser,
			Zip:            communityZip,
			Audience:       communityAudience,
			ServiceAreas:   communityServiceAreas,
			PreferredCity:  communityCity,
			PreferredState: communityState,
			Categories:     communityCategories,
		})
		if err != nil {
			return eris.Wrap(err, "community context")
		}

		if communityJSON {
			return writeJSON(cmd.OutOrStdout(), cc)
		}
		if cc.CityDescription != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", cc.CityDescription)
		}
		if err := writeData(cmd.OutOrStdout(), env.Catalog, cc.CommunityData); err != nil {
			return err
		}
		for header, text := range cc.SeasonalExtraSections {
			fmt.Fprintf(cmd.OutOrStdout(), "## %s\n%s\n\n", header, text)
		}
		return nil
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeData prints categories in catalog order followed by seasonal
// sections.
func writeData(w io.Writer, cat *catalog.Catalog, data *community.Data) error {
	var b strings.Builder
	for _, c := range cat.Categories {
		text, ok := data.Categories[c.Key]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n%s\n\n", c.Label, text)
	}
	for header, text := range data.SeasonalSections {
		fmt.Fprintf(&b, "## Seasonal: %s\n%s\n\n", header, text)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func init() {
	for _, c := range []*cobra.Command{communityFetchCmd, communityContextCmd} {
		c.Flags().StringVar(&communityZip, "zip", "", "5-digit zip code")
		c.Flags().StringVar(&communityAudience, "audience", "", "audience segment (e.g. growing_families)")
		c.Flags().StringSliceVar(&communityServiceAreas, "service-area", nil, `additional service areas as "City,ST"`)
		c.Flags().StringVar(&communityCity, "city", "", "preferred city when a zip spans several")
		c.Flags().StringVar(&communityState, "state", "", "preferred state")
		c.Flags().StringSliceVar(&communityCategories, "categories", nil, "category keys to include (default all)")
		c.Flags().BoolVar(&communityJSON, "json", false, "print JSON")
		_ = c.MarkFlagRequired("zip")
	}
	communityFetchCmd.Flags().BoolVar(&communityForce, "force", false, "bypass cached pools and payloads")
	communityContextCmd.Flags().StringVar(&communityUser, "user", "", "user ID for category rotation")

	communityCmd.AddCommand(communityFetchCmd, communityContextCmd)
	rootCmd.AddCommand(communityCmd)
}
