package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogSQL "github.com/frahmantamala/missiontime/internal/catalog/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("loadConfig", func() {
	AfterEach(func() {
		dbSource = ""
	})

	It("should fall back to sqlite defaults without a config file", func() {
		cfg, err := loadConfig(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal(internal.DriverSQLite))
		Expect(cfg.Database.Source).To(Equal("missiontime.db"))
		Expect(cfg.Database.MaxOpenConns).To(Equal(1))
		Expect(cfg.Report.RecentWeeks).To(Equal(6))
	})

	It("should read config.yml and let --db override the source", func() {
		dir := GinkgoT().TempDir()
		yml := "http_server:\n  port: 9090\ndatabase:\n  driver: sqlite\n  source: file.db\nreport:\n  recent_weeks: 4\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())
		dbSource = "other.db"

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Database.Source).To(Equal("other.db"))
		Expect(cfg.Report.RecentWeeks).To(Equal(4))
	})

	It("should reject an unknown driver", func() {
		dir := GinkgoT().TempDir()
		yml := "database:\n  driver: mysql\n  source: x\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600)).To(Succeed())

		_, err := loadConfig(dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported driver"))
	})
})

var _ = Describe("seed", func() {
	var (
		db  *store.DB
		svc *catalog.Service
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())
		svc = catalog.NewService(catalogSQL.NewCatalogRepository(db.Gorm), logger.LoggerWrapper())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	It("should build a department tree rooted at one center", func() {
		Expect(seedCatalog(svc)).To(Succeed())

		depts, err := svc.ListDepartments()
		Expect(err).NotTo(HaveOccurred())
		Expect(depts).To(HaveLen(6))
		tree := catalog.BuildTree(depts)
		Expect(tree[0].Name).To(Equal("Mission Center"))
		Expect(tree[0].Depth).To(Equal(0))

		programs, err := svc.ListPrograms()
		Expect(err).NotTo(HaveOccurred())
		Expect(programs).To(HaveLen(2))
	})

	It("should empty every table on clear", func() {
		Expect(seedCatalog(svc)).To(Succeed())
		Expect(clearAll(db.Gorm)).To(Succeed())

		depts, err := svc.ListDepartments()
		Expect(err).NotTo(HaveOccurred())
		Expect(depts).To(BeEmpty())
		items, err := svc.ListWorkItems()
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(BeEmpty())
	})
})

var _ = Describe("writeReport", func() {
	var out string

	BeforeEach(func() {
		out = filepath.Join(GinkgoT().TempDir(), "hours.xlsx")
	})

	It("should leave the written file in place", func() {
		Expect(writeReport(out, func(w io.Writer) error {
			_, err := io.WriteString(w, "sheet")
			return err
		})).To(Succeed())

		data, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("sheet"))
	})

	It("should remove the file when the workbook fails", func() {
		err := writeReport(out, func(w io.Writer) error {
			_, _ = io.WriteString(w, "half")
			return fmt.Errorf("aggregation failed")
		})
		Expect(err).To(MatchError("aggregation failed"))
		Expect(out).NotTo(BeAnExistingFile())
	})

	It("should fail and remove the file when it cannot be closed", func() {
		err := writeReport(out, func(w io.Writer) error {
			return w.(*os.File).Close()
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed to close"))
		Expect(out).NotTo(BeAnExistingFile())
	})

	It("should report a directory that does not exist", func() {
		err := writeReport(filepath.Join(out, "missing", "hours.xlsx"), func(io.Writer) error { return nil })
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed to create"))
	})
})
