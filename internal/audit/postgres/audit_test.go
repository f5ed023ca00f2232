package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pcoutinho/legal-management/internal/audit"
	auditPostgres "github.com/pcoutinho/legal-management/internal/audit/postgres"
	"github.com/pcoutinho/legal-management/internal/core/database"
)

func TestAuditPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Postgres Suite")
}

// SQLiteAuditLog mirrors the audit_logs table for in-memory tests.
type SQLiteAuditLog struct {
	ID           string  `gorm:"primaryKey;size:26"`
	UserID       *string `gorm:"size:36"`
	Action       string  `gorm:"size:50;not null"`
	ResourceType string  `gorm:"size:50;not null"`
	ResourceID   *string `gorm:"size:36"`
	Details      string
	IPAddress    *string `gorm:"size:45"`
	CreatedAt    time.Time
}

func (SQLiteAuditLog) TableName() string {
	return "audit_logs"
}

var _ = Describe("Audit Repository", func() {
	var (
		repo audit.Repository
		ctx  context.Context
	)

	entry := func(id, action string) *audit.AuditLog {
		actorID := "user-1"
		return &audit.AuditLog{
			ID:           id,
			UserID:       &actorID,
			Action:       action,
			ResourceType: "companies",
			CreatedAt:    time.Now(),
		}
	}

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&SQLiteAuditLog{})).To(Succeed())

		repo = auditPostgres.NewAuditRepository(db)
		ctx = context.Background()
	})

	It("appends and reads back an entry with its details", func() {
		log := entry("01AN4Z07BY79KA1307SR9X4MV3", "create")
		log.Details = database.JSONMap{"name": "Acme", "is_active": true}

		Expect(repo.Create(ctx, log)).To(Succeed())

		logs, err := repo.List(ctx, 50, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(HaveLen(1))
		Expect(logs[0].Action).To(Equal("create"))
		Expect(logs[0].Details).To(HaveKeyWithValue("name", "Acme"))
		Expect(*logs[0].UserID).To(Equal("user-1"))
	})

	It("lists newest entries first", func() {
		// ULIDs sort lexicographically by creation time
		Expect(repo.Create(ctx, entry("01AN4Z07BY79KA1307SR9X4MV3", "create"))).To(Succeed())
		Expect(repo.Create(ctx, entry("01BN4Z07BY79KA1307SR9X4MV3", "update"))).To(Succeed())
		Expect(repo.Create(ctx, entry("01CN4Z07BY79KA1307SR9X4MV3", "delete"))).To(Succeed())

		logs, err := repo.List(ctx, 50, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(HaveLen(3))
		Expect(logs[0].Action).To(Equal("delete"))
		Expect(logs[2].Action).To(Equal("create"))
	})

	It("paginates with limit and offset", func() {
		Expect(repo.Create(ctx, entry("01AN4Z07BY79KA1307SR9X4MV3", "create"))).To(Succeed())
		Expect(repo.Create(ctx, entry("01BN4Z07BY79KA1307SR9X4MV3", "update"))).To(Succeed())

		logs, err := repo.List(ctx, 1, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs).To(HaveLen(1))
		Expect(logs[0].Action).To(Equal("create"))
	})
})
