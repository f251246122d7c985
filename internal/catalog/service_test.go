package catalog_test

import (
	"log/slog"
	"os"
	"testing"

	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogSQL "github.com/frahmantamala/missiontime/internal/catalog/sqlstore"
	"github.com/frahmantamala/missiontime/internal/store"
	"github.com/frahmantamala/missiontime/internal/store/storetest"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCatalog(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Catalog Suite")
}

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("Catalog Service", func() {
	var (
		db      *store.DB
		service *catalog.Service
	)

	BeforeEach(func() {
		var err error
		db, err = storetest.NewMemoryDB()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = catalog.NewService(catalogSQL.NewCatalogRepository(db.Gorm), slogger)
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	Describe("Departments", func() {
		It("should build a hierarchy from a center down to a group", func() {
			center, err := service.CreateDepartment("Center", catalog.LevelCenter, nil, 0)
			Expect(err).NotTo(HaveOccurred())
			cplx, err := service.CreateDepartment("Complex A", catalog.LevelComplex, &center.ID, 0)
			Expect(err).NotTo(HaveOccurred())
			dept, err := service.CreateDepartment("Dept 1", catalog.LevelDepartment, &cplx.ID, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateDepartment("Group 1", catalog.LevelGroup, &dept.ID, 0)
			Expect(err).NotTo(HaveOccurred())

			tree, err := service.DepartmentTree()
			Expect(err).NotTo(HaveOccurred())
			Expect(tree).To(HaveLen(4))
			Expect(tree[0].Name).To(Equal("Center"))
			Expect(tree[3].Name).To(Equal("Group 1"))
			Expect(tree[3].Depth).To(Equal(3))

			names, err := service.ComplexAndDepartmentNames(dept.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(names.ComplexName).To(Equal("Complex A"))
			Expect(names.DepartmentName).To(Equal("Dept 1"))

			byLevel, err := service.ListDepartmentsByLevel(catalog.LevelDepartment)
			Expect(err).NotTo(HaveOccurred())
			Expect(byLevel).To(HaveLen(1))
		})

		It("should reject a center with a parent and a group without one", func() {
			_, err := service.CreateDepartment("Center", catalog.LevelCenter, int64Ptr(1), 0)
			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())

			_, err = service.CreateDepartment("Group", catalog.LevelGroup, nil, 0)
			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})

		It("should reject a parent of the same or lower rank", func() {
			center, err := service.CreateDepartment("Center", catalog.LevelCenter, nil, 0)
			Expect(err).NotTo(HaveOccurred())

			dept, err := service.CreateDepartment("Dept", catalog.LevelDepartment, &center.ID, 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateDepartment("Complex", catalog.LevelComplex, &dept.ID, 0)
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeInvalidParent))
		})

		It("should return not found for an unknown parent", func() {
			_, err := service.CreateDepartment("Complex", catalog.LevelComplex, int64Ptr(99), 0)
			Expect(err).To(MatchError(errors.ErrDepartmentNotFound))
		})

		It("should rename a department", func() {
			center, err := service.CreateDepartment("Center", catalog.LevelCenter, nil, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RenameDepartment(center.ID, "  Main Center ")).To(Succeed())

			got, err := service.GetDepartment(center.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Main Center"))

			Expect(service.RenameDepartment(999, "x")).To(MatchError(errors.ErrDepartmentNotFound))
		})

		It("should refuse to delete a department that has children", func() {
			center, err := service.CreateDepartment("Center", catalog.LevelCenter, nil, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateDepartment("Complex", catalog.LevelComplex, &center.ID, 0)
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteDepartment(center.ID)
			Expect(errors.IsType(err, errors.ErrorTypeConflict)).To(BeTrue())
			appErr, _ := errors.IsAppError(err)
			Expect(appErr.BlockingCount()).To(Equal(int64(1)))
		})

		It("should delete an unused department", func() {
			center, err := service.CreateDepartment("Center", catalog.LevelCenter, nil, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteDepartment(center.ID)).To(Succeed())
			_, err = service.GetDepartment(center.ID)
			Expect(err).To(MatchError(errors.ErrDepartmentNotFound))
		})
	})

	Describe("Positions", func() {
		It("should create, rename and list positions", func() {
			p, err := service.CreatePosition("Engineer")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreatePosition("Analyst")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdatePosition(p.ID, "Senior Engineer")
			Expect(err).NotTo(HaveOccurred())

			list, err := service.ListPositions()
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Name).To(Equal("Analyst"))
			Expect(list[1].Name).To(Equal("Senior Engineer"))
		})

		It("should reject duplicate names with a conflict", func() {
			_, err := service.CreatePosition("Engineer")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreatePosition("Engineer")
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeDuplicateName))
		})

		It("should reject a blank name", func() {
			_, err := service.CreatePosition("   ")
			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})

		It("should refuse to delete a position held by a segment", func() {
			center, err := service.CreateDepartment("Center", catalog.LevelCenter, nil, 0)
			Expect(err).NotTo(HaveOccurred())
			p, err := service.CreatePosition("Engineer")
			Expect(err).NotTo(HaveOccurred())

			Expect(db.Gorm.Exec("INSERT INTO employees (id, fio) VALUES (1, 'Ivanov I.I.')").Error).To(Succeed())
			Expect(db.Gorm.Exec(
				"INSERT INTO employee_positions_history (employee_id, department_id, position_id, start_date, action) VALUES (1, ?, ?, '2024-01-01', 1)",
				center.ID, p.ID).Error).To(Succeed())

			err = service.DeletePosition(p.ID)
			Expect(errors.IsType(err, errors.ErrorTypeConflict)).To(BeTrue())
			appErr, _ := errors.IsAppError(err)
			Expect(appErr.BlockingCount()).To(Equal(int64(1)))
		})
	})

	Describe("Programs", func() {
		It("should list only programs active in the month", func() {
			march := dateutil.Date(2024, 3, 31)
			_, err := service.CreateProgram(catalog.ProgramInput{Name: "Old", ShortName: "OLD", DateStart: dateutil.Date(2023, 1, 1), DateEnd: &march})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateProgram(catalog.ProgramInput{Name: "Open", ShortName: "OPN", DateStart: dateutil.Date(2024, 3, 15)})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateProgram(catalog.ProgramInput{Name: "Future", ShortName: "FUT", DateStart: dateutil.Date(2024, 5, 1)})
			Expect(err).NotTo(HaveOccurred())

			march2024, err := service.ListProgramsForMonth(2024, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(march2024).To(HaveLen(2))

			april, err := service.ListProgramsForMonth(2024, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(april).To(HaveLen(1))
			Expect(april[0].ShortName).To(Equal("OPN"))
		})

		It("should reject an end before the start", func() {
			end := dateutil.Date(2024, 1, 1)
			_, err := service.CreateProgram(catalog.ProgramInput{Name: "P", ShortName: "P", DateStart: dateutil.Date(2024, 2, 1), DateEnd: &end})
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeValidation))
		})

		It("should reject an invalid month", func() {
			_, err := service.ListProgramsForMonth(2024, 13)
			Expect(errors.IsType(err, errors.ErrorTypeValidation)).To(BeTrue())
		})

		It("should update and delete a program", func() {
			p, err := service.CreateProgram(catalog.ProgramInput{Name: "P", ShortName: "P", DateStart: dateutil.Date(2024, 2, 1)})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateProgram(p.ID, catalog.ProgramInput{Name: "P2", ShortName: "P2", DateStart: dateutil.Date(2024, 1, 1)})
			Expect(err).NotTo(HaveOccurred())

			got, err := service.GetProgram(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("P2"))
			Expect(got.DateStart).To(Equal(dateutil.Date(2024, 1, 1)))

			Expect(service.DeleteProgram(p.ID)).To(Succeed())
			Expect(service.DeleteProgram(p.ID)).To(MatchError(errors.ErrProgramNotFound))
		})
	})

	Describe("Work items", func() {
		It("should refuse to nest an item under its own descendant", func() {
			root, err := service.CreateWorkItem(catalog.WorkItemInput{Name: "Design", SpecialCode: "D1"})
			Expect(err).NotTo(HaveOccurred())
			child, err := service.CreateWorkItem(catalog.WorkItemInput{Name: "Review", ParentID: &root.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateWorkItem(root.ID, catalog.WorkItemInput{Name: "Design", ParentID: &child.ID})
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeInvalidParent))
		})

		It("should refuse to delete an item with children", func() {
			root, err := service.CreateWorkItem(catalog.WorkItemInput{Name: "Design"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateWorkItem(catalog.WorkItemInput{Name: "Review", ParentID: &root.ID})
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteWorkItem(root.ID)
			Expect(errors.IsType(err, errors.ErrorTypeConflict)).To(BeTrue())
		})

		It("should look up items by id", func() {
			a, err := service.CreateWorkItem(catalog.WorkItemInput{Name: "A"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateWorkItem(catalog.WorkItemInput{Name: "B"})
			Expect(err).NotTo(HaveOccurred())

			items, err := service.WorkItemsByIDs([]int64{a.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(1))
			Expect(items[0].Name).To(Equal("A"))

			empty, err := service.WorkItemsByIDs(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(empty).To(BeEmpty())
		})
	})
})
