package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pcoutinho/legal-management/internal/audit"
	auditpg "github.com/pcoutinho/legal-management/internal/audit/postgres"
	"github.com/pcoutinho/legal-management/internal/core/events"
	"github.com/pcoutinho/legal-management/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the audit event consumer.`,
}

// Audit worker: runs the audit recorder standalone, consuming events off
// the bus. Useful when the audit sink should live outside the API process.
var auditWorkerCmd = &cobra.Command{
	Use:   "audit",
	Short: "Start audit event worker",
	Long:  `Start the audit worker that persists audit events published on the event bus`,
	Run: func(cmd *cobra.Command, args []string) {
		startAuditWorker()
	},
}

func startAuditWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.LoggerWrapper()

	_, db, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}

	eventBus := events.NewEventBus(log)
	audit.NewBusRecorder(eventBus, auditpg.NewAuditRepository(db), log)

	log.Info("audit worker is running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Info("received signal, shutting down audit worker", "signal", sig)
}

func init() {
	workerCmd.AddCommand(auditWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
