package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/prasukj7-arch/internmatch/internal/logger"
	"github.com/prasukj7-arch/internmatch/internal/profile"
	"github.com/prasukj7-arch/internmatch/internal/recommend"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print recommendations for a candidate profile file",
	// Bound here rather than in init: serve shares the catalog-file key,
	// and the last bind wins, so each command rebinds before it runs.
	PreRun: func(cmd *cobra.Command, _ []string) {
		viper.BindPFlag("catalog-file", cmd.Flags().Lookup("catalog"))
	},
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("catalog", "c", "", "path to the internship catalog CSV")
	recommendCmd.Flags().StringP("profile", "p", "", "path to a candidate profile file (yaml or json)")
	recommendCmd.Flags().IntP("count", "n", recommend.DefaultCount, "number of recommendations")
}

func runRecommend(cmd *cobra.Command) {
	ctx := context.Background()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		cobra.CheckErr(err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	profilePath, _ := cmd.Flags().GetString("profile")
	if profilePath == "" {
		log.Fatal("profile file is required", zap.String("hint", "use the --profile flag"))
	}

	p, err := loadProfile(profilePath)
	if err != nil {
		log.Fatal("loading the profile", zap.Error(err))
	}
	if err := p.Validate(); err != nil {
		log.Fatal("invalid profile", zap.Error(err))
	}

	cat := loadCatalog(config, log)

	generative := newGenerativeAttempt(ctx, config, log)
	engine := recommend.NewEngine(cat, generative, log)

	count, _ := cmd.Flags().GetInt("count")

	result, err := engine.Recommend(ctx, p, count)
	if err != nil {
		log.Fatal("no recommendations available", zap.Error(err))
	}

	log.Info("recommendations ready",
		zap.String("method", result.Method),
		zap.Int("count", len(result.Recommendations)))

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("rendering the result", zap.Error(err))
	}
	fmt.Println(string(pretty))
}

// loadProfile reads a candidate profile from a yaml or json file.
func loadProfile(path string) (*profile.Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return profile.FromMap(v.AllSettings())
}
