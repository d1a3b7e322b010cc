package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rater",
	Short: "GTFS-RT Rater API - 실시간 피드 품질 등급 API",
	Long: `GTFS-RT Rater Unified CLI

집계된 GTFS-RT 피드 품질 문서를 프론트엔드에 제공하는 API 서버.
문서는 S3 또는 로컬 디렉터리에서 읽고, 기관명은 MobilityDatabase에서 갱신합니다.

Usage:
  go run ./cmd/rater [command]

Examples:
  go run ./cmd/rater api
  go run ./cmd/rater backend
  go run ./cmd/rater refresh-agency-names
  go run ./cmd/rater scheduler list`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
