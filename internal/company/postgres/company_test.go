package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pcoutinho/legal-management/internal/company"
	companyPostgres "github.com/pcoutinho/legal-management/internal/company/postgres"
	"github.com/pcoutinho/legal-management/internal/core/database"
)

func TestCompanyPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Company Postgres Suite")
}

// SQLiteCompany mirrors the companies table for in-memory tests.
type SQLiteCompany struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Name        string     `gorm:"not null"`
	CNPJ        string     `gorm:"column:cnpj;size:18;uniqueIndex;not null"`
	IsActive    bool       `gorm:"not null;default:true"`
	OwnerID     string     `gorm:"size:36;not null"`
	CreatedByID string     `gorm:"size:36;not null"`
	IsDeleted   bool       `gorm:"not null;default:false"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
	DeletedByID *string    `gorm:"size:36"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (SQLiteCompany) TableName() string {
	return "companies"
}

type SQLiteCompanyUser struct {
	CompanyID string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36"`
}

func (SQLiteCompanyUser) TableName() string {
	return "company_users"
}

var _ = Describe("Company Repository", func() {
	var (
		db   *gorm.DB
		repo *companyPostgres.CompanyRepository
		ctx  context.Context
	)

	newCompany := func(name, cnpj string) *company.Company {
		now := time.Now()
		return &company.Company{
			ID:          uuid.NewString(),
			Name:        name,
			CNPJ:        cnpj,
			IsActive:    true,
			OwnerID:     "owner-1",
			CreatedByID: "owner-1",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&SQLiteCompany{}, &SQLiteCompanyUser{})).To(Succeed())

		repo = companyPostgres.NewCompanyRepository(db)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("persists a company", func() {
			c := newCompany("Acme", "12345678000190")
			Expect(repo.Create(ctx, c)).To(Succeed())

			found, err := repo.GetByID(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Acme"))
			Expect(found.CNPJ).To(Equal("12345678000190"))
		})

		It("rejects a duplicate CNPJ with a recognizable violation", func() {
			Expect(repo.Create(ctx, newCompany("Acme", "12345678000190"))).To(Succeed())

			err := repo.Create(ctx, newCompany("Other", "12345678000190"))
			Expect(err).To(HaveOccurred())
			Expect(database.IsUniqueViolation(err)).To(BeTrue())
		})
	})

	Describe("GetByID", func() {
		It("reports missing rows as not found", func() {
			_, err := repo.GetByID(ctx, "missing")
			Expect(database.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("applies changes to an existing row", func() {
			c := newCompany("Acme", "12345678000190")
			Expect(repo.Create(ctx, c)).To(Succeed())

			c.Name = "Acme Legal"
			c.IsActive = false
			c.UpdatedAt = time.Now()
			Expect(repo.Update(ctx, c)).To(Succeed())

			found, err := repo.GetByID(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Acme Legal"))
			Expect(found.IsActive).To(BeFalse())
		})
	})

	Describe("SoftDelete", func() {
		var c *company.Company

		BeforeEach(func() {
			c = newCompany("Acme", "12345678000190")
			Expect(repo.Create(ctx, c)).To(Succeed())
		})

		It("hides the row from reads but keeps it on disk", func() {
			Expect(repo.SoftDelete(ctx, c.ID, "actor-1")).To(Succeed())

			_, err := repo.GetByID(ctx, c.ID)
			Expect(database.IsNotFound(err)).To(BeTrue())

			list, err := repo.List(ctx, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})

		It("records who deleted the row", func() {
			Expect(repo.SoftDelete(ctx, c.ID, "actor-1")).To(Succeed())

			var raw SQLiteCompany
			Expect(db.Raw("SELECT * FROM companies WHERE id = ?", c.ID).Scan(&raw).Error).To(Succeed())
			Expect(raw.IsDeleted).To(BeTrue())
			Expect(raw.DeletedByID).NotTo(BeNil())
			Expect(*raw.DeletedByID).To(Equal("actor-1"))
			Expect(raw.DeletedAt).NotTo(BeNil())
		})

		It("reports not found on a second delete", func() {
			Expect(repo.SoftDelete(ctx, c.ID, "actor-1")).To(Succeed())
			err := repo.SoftDelete(ctx, c.ID, "actor-1")
			Expect(database.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns newest first and paginates", func() {
			older := newCompany("Older", "11111111000111")
			older.CreatedAt = time.Now().Add(-time.Hour)
			Expect(repo.Create(ctx, older)).To(Succeed())
			Expect(repo.Create(ctx, newCompany("Newer", "22222222000122"))).To(Succeed())

			list, err := repo.List(ctx, 1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Name).To(Equal("Newer"))

			list, err = repo.List(ctx, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].Name).To(Equal("Older"))
		})
	})

	Describe("members", func() {
		var c *company.Company

		BeforeEach(func() {
			c = newCompany("Acme", "12345678000190")
			Expect(repo.Create(ctx, c)).To(Succeed())
		})

		It("adds, lists and removes membership rows", func() {
			Expect(repo.AddMember(ctx, c.ID, "user-b")).To(Succeed())
			Expect(repo.AddMember(ctx, c.ID, "user-a")).To(Succeed())

			ids, err := repo.MemberIDs(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"user-a", "user-b"}))

			Expect(repo.RemoveMember(ctx, c.ID, "user-a")).To(Succeed())
			ids, err = repo.MemberIDs(ctx, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]string{"user-b"}))
		})

		It("surfaces a unique violation on a duplicate membership", func() {
			Expect(repo.AddMember(ctx, c.ID, "user-a")).To(Succeed())
			err := repo.AddMember(ctx, c.ID, "user-a")
			Expect(database.IsUniqueViolation(err)).To(BeTrue())
		})
	})
})
