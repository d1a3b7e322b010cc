package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gtfs-rt-rater/server/internal/api"
	"github.com/gtfs-rt-rater/server/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 문서 백엔드 선택 (S3 또는 로컬)
- HTTP API 서버 시작
- 기관명 정기 갱신 스케줄러 시작 (--no-scheduler 로 비활성화)

Endpoints:
  GET  /api/healthcheck                  - Health check
  GET  /api/feeds                        - 피드 목록
  GET  /api/feeds/{feed_id}              - 피드 상세
  POST /api/admin/refresh-agency-names   - 기관명 갱신 (x-admin-token)
  GET  /metrics                          - Prometheus metrics

Example:
  go run ./cmd/rater api
  go run ./cmd/rater api --port 8080 --no-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort     string
	noScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT)")
	apiCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "기관명 정기 갱신 비활성화")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== GTFS-RT Rater API Server ===")

	// 1. Wire dependencies
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":    a.cfg.Port,
		"env":     a.cfg.Env,
		"backend": a.backend.Backend,
	}).Info("Initializing API server")

	// 2. Create handlers and router
	h := api.Handlers{
		Feeds: handlers.NewFeedsHandler(a.backend.Reader, log),
		Admin: handlers.NewAdminHandler(a.refresher, a.cfg.Admin.Token, a.cfg.Admin.RefreshPerMinute, log),
	}
	if a.cfg.Admin.Token == "" {
		log.Warn("ADMIN_TOKEN not set; admin endpoints will reject every call")
	}
	router := api.NewRouter(h, a.cfg, a.metrics, log)

	// 3. Create server
	server := api.New(a.cfg, log, router)

	// 4. Start scheduler
	if !noScheduler {
		sched, err := a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 5. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s (backend: %s)\n", a.cfg.Port, a.backend.Backend)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
