package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gtfs-rt-rater/server/internal/agency"
)

// refreshCmd runs one agency name refresh and exits
var refreshCmd = &cobra.Command{
	Use:   "refresh-agency-names",
	Short: "기관명 즉시 갱신",
	Long: `MobilityDatabase에서 기관명을 가져와 S3의 aggregates/agency_names.json 에 저장합니다.

로컬(static) 백엔드에서는 저장할 곳이 없으므로 아무것도 하지 않습니다.

Example:
  MOBILITY_DB_API_KEY=... go run ./cmd/rater refresh-agency-names`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.refresher.Refresh(cmd.Context(), agency.TriggerCLI)
	if err != nil {
		return fmt.Errorf("refresh agency names: %w", err)
	}

	fmt.Printf("✅ Updated %d agency names (backend: %s)\n", n, a.backend.Backend)
	return nil
}
