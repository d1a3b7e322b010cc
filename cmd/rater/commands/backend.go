package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gtfs-rt-rater/server/internal/storage"
	"github.com/gtfs-rt-rater/server/pkg/logger"
	"github.com/gtfs-rt-rater/server/pkg/metrics"
)

// backendCmd prints which document backend this environment selects
var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "문서 백엔드 확인",
	Long: `BACKEND_SOURCE, GTFS_RT_RATER_BUCKET 과 AWS 자격 증명으로 선택되는 백엔드를 출력합니다.

Example:
  go run ./cmd/rater backend
  BACKEND_SOURCE=static go run ./cmd/rater backend`,
	RunE: runBackend,
}

func init() {
	rootCmd.AddCommand(backendCmd)
}

func runBackend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resolved, err := storage.Resolve(cmd.Context(), cfg, logger.New(cfg), metrics.NewManager())
	if err != nil {
		return fmt.Errorf("resolve backend: %w", err)
	}

	fmt.Printf("Backend: %s\n", resolved.Backend)
	switch resolved.Backend {
	case storage.BackendRemote:
		fmt.Printf("  Bucket: %s (region %s)\n", cfg.Storage.Bucket, cfg.Storage.Region)
	case storage.BackendStatic:
		fmt.Printf("  Directory: %s\n", cfg.Storage.StaticDir)
	}
	fmt.Printf("  Agency names writable: %t\n", resolved.Writer != nil)

	return nil
}
