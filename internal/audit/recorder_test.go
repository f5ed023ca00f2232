package audit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/core/events"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

type mockAuditRepository struct {
	mu        sync.Mutex
	logs      []*audit.AuditLog
	createErr error
}

func (m *mockAuditRepository) Create(_ context.Context, log *audit.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockAuditRepository) List(_ context.Context, limit, offset int) ([]*audit.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logs, nil
}

func (m *mockAuditRepository) stored() []*audit.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*audit.AuditLog(nil), m.logs...)
}

var _ = Describe("BusRecorder", func() {
	var (
		repo     *mockAuditRepository
		recorder *audit.BusRecorder
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = &mockAuditRepository{}
		bus := events.NewEventBus(logger)
		recorder = audit.NewBusRecorder(bus, repo, logger)
	})

	It("persists the entry off the caller's goroutine", func() {
		actorID := "user-1"
		resourceID := "company-9"
		recorder.Record(context.Background(), audit.Entry{
			ActorID:      &actorID,
			Action:       "create",
			ResourceType: "companies",
			ResourceID:   &resourceID,
			Details:      map[string]any{"name": "Acme"},
			IPAddress:    "10.0.0.5",
		})

		Eventually(func() int {
			return len(repo.stored())
		}).Should(Equal(1))

		log := repo.stored()[0]
		Expect(log.ID).To(HaveLen(26))
		Expect(*log.UserID).To(Equal("user-1"))
		Expect(log.Action).To(Equal("create"))
		Expect(*log.ResourceID).To(Equal("company-9"))
		Expect(log.Details).To(HaveKeyWithValue("name", "Acme"))
		Expect(*log.IPAddress).To(Equal("10.0.0.5"))
	})

	It("leaves the ip address unset when the request carried none", func() {
		recorder.Record(context.Background(), audit.Entry{
			Action:       "signup",
			ResourceType: "users",
		})

		Eventually(func() int {
			return len(repo.stored())
		}).Should(Equal(1))

		log := repo.stored()[0]
		Expect(log.IPAddress).To(BeNil())
		Expect(log.UserID).To(BeNil())
	})

	It("survives a cancelled request context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		recorder.Record(ctx, audit.Entry{Action: "delete", ResourceType: "roles"})

		Eventually(func() int {
			return len(repo.stored())
		}).Should(Equal(1))
	})

	It("swallows storage failures", func() {
		repo.createErr = errors.New("disk full")

		recorder.Record(context.Background(), audit.Entry{Action: "create", ResourceType: "groups"})

		Consistently(func() int {
			return len(repo.stored())
		}, 100*time.Millisecond).Should(BeZero())
	})
})
