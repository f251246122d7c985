package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/missiontime/internal/catalog"
	catalogDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/catalog"
	employeeDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/employee"
	timesheetDatamodel "github.com/frahmantamala/missiontime/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a sample department tree, positions, programs and work items.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to init dependencies: %v", err)
		}
		defer deps.Close()

		if clearData {
			if err := clearAll(deps.DB.Gorm); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		existing, err := deps.Catalog.ListDepartments()
		if err != nil {
			log.Fatalf("failed to list departments: %v", err)
		}
		if len(existing) > 0 {
			fmt.Println("departments already exist; run with --clear to reseed")
			return
		}

		if err := seedCatalog(deps.Catalog); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		fmt.Println("Seeding completed")
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

// clearAll empties every table, children before parents. Tree links are cut first
// since RESTRICT keys are checked row by row.
func clearAll(db *gorm.DB) error {
	models := []interface{}{
		&timesheetDatamodel.Entry{},
		&timesheetDatamodel.Timesheet{},
		&employeeDatamodel.PositionHistory{},
		&employeeDatamodel.Employee{},
		&catalogDatamodel.WorkItem{},
		&catalogDatamodel.Program{},
		&catalogDatamodel.Position{},
		&catalogDatamodel.Department{},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, tree := range []interface{}{&catalogDatamodel.WorkItem{}, &catalogDatamodel.Department{}} {
			if err := all.Model(tree).Update("parent_id", nil).Error; err != nil {
				return err
			}
		}
		for _, m := range models {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedCatalog(svc *catalog.Service) error {
	center, err := svc.CreateDepartment("Mission Center", catalog.LevelCenter, nil, 0)
	if err != nil {
		return err
	}
	flight, err := svc.CreateDepartment("Flight Complex", catalog.LevelComplex, &center.ID, 1)
	if err != nil {
		return err
	}
	ground, err := svc.CreateDepartment("Ground Complex", catalog.LevelComplex, &center.ID, 2)
	if err != nil {
		return err
	}
	navigation, err := svc.CreateDepartment("Navigation", catalog.LevelDepartment, &flight.ID, 0)
	if err != nil {
		return err
	}
	if _, err := svc.CreateDepartment("Telemetry", catalog.LevelDepartment, &ground.ID, 0); err != nil {
		return err
	}
	if _, err := svc.CreateDepartment("Orbit Group", catalog.LevelGroup, &navigation.ID, 0); err != nil {
		return err
	}
	fmt.Println("Seeded department tree")

	for _, name := range []string{"Engineer", "Lead Engineer", "Technician"} {
		if _, err := svc.CreatePosition(name); err != nil {
			return err
		}
	}
	fmt.Println("Seeded positions")

	surveyEnd := dateutil.Date(2024, 12, 31)
	programs := []catalog.ProgramInput{
		{Name: "Lunar Relay", ShortName: "LR", DateStart: dateutil.Date(2024, 1, 15)},
		{Name: "Deep Survey", ShortName: "DS", DateStart: dateutil.Date(2024, 3, 1), DateEnd: &surveyEnd},
	}
	for _, p := range programs {
		if _, err := svc.CreateProgram(p); err != nil {
			return err
		}
	}
	fmt.Println("Seeded programs")

	if _, err := svc.CreateWorkItem(catalog.WorkItemInput{Name: "Design", SpecialCode: "D1"}); err != nil {
		return err
	}
	testing, err := svc.CreateWorkItem(catalog.WorkItemInput{Name: "Testing", SpecialCode: "T1"})
	if err != nil {
		return err
	}
	if _, err := svc.CreateWorkItem(catalog.WorkItemInput{ParentID: &testing.ID, Name: "Integration tests"}); err != nil {
		return err
	}
	if _, err := svc.CreateWorkItem(catalog.WorkItemInput{Name: "Meetings"}); err != nil {
		return err
	}
	fmt.Println("Seeded work items")
	return nil
}
