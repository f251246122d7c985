package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frahmantamala/missiontime/internal/employee"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	"github.com/spf13/cobra"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Employment ledger commands",
	Long:  `Hire, transfer, fire and inspect employees from the command line.`,
}

var (
	empID        int64
	empFio       string
	empDept      int64
	empPosition  int64
	empDate      string
	empNote      string
	empShowFired bool
)

func notePtr() *string {
	if empNote == "" {
		return nil
	}
	return &empNote
}

// runLedger opens the dependencies, runs fn and prints its result as JSON.
func runLedger(fn func(ctx context.Context, svc *employee.Service) (interface{}, error)) error {
	deps, err := initializeDependencies()
	if err != nil {
		return err
	}
	defer deps.Close()

	out, err := fn(context.Background(), deps.Employee)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var hireCmd = &cobra.Command{
	Use:   "hire",
	Short: "Hire a new employee, or rehire a separated one with --id",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := dateutil.Parse(empDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		return runLedger(func(ctx context.Context, svc *employee.Service) (interface{}, error) {
			return svc.Hire(ctx, employee.HireInput{
				EmployeeID:   empID,
				Fio:          empFio,
				DepartmentID: empDept,
				PositionID:   empPosition,
				StartDate:    start,
				Note:         notePtr(),
			})
		})
	},
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Move an active employee to a new department and position",
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := dateutil.Parse(empDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		return runLedger(func(ctx context.Context, svc *employee.Service) (interface{}, error) {
			segmentID, err := svc.Transfer(ctx, employee.TransferInput{
				EmployeeID:      empID,
				NewDepartmentID: empDept,
				NewPositionID:   empPosition,
				TransferDate:    on,
				Note:            notePtr(),
			})
			if err != nil {
				return nil, err
			}
			return employee.TransitionResponse{EmployeeID: empID, SegmentID: segmentID, State: employee.StateActive.String()}, nil
		})
	},
}

var fireCmd = &cobra.Command{
	Use:   "fire",
	Short: "Separate an employee; --date is the first day not employed",
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := dateutil.Parse(empDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		return runLedger(func(ctx context.Context, svc *employee.Service) (interface{}, error) {
			segmentID, err := svc.Fire(ctx, employee.FireInput{EmployeeID: empID, FireDate: on, Note: notePtr()})
			if err != nil {
				return nil, err
			}
			return employee.TransitionResponse{EmployeeID: empID, SegmentID: segmentID, State: employee.StateSeparated.String()}, nil
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Undo the last transfer or fire",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLedger(func(ctx context.Context, svc *employee.Service) (interface{}, error) {
			seg, err := svc.CancelLastOperation(ctx, empID)
			if err != nil {
				return nil, err
			}
			return seg.ToResponse(), nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print an employee's segments, or the employee list without --id",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLedger(func(ctx context.Context, svc *employee.Service) (interface{}, error) {
			if empID == 0 {
				list, err := svc.List(empShowFired)
				if err != nil {
					return nil, err
				}
				return employee.EmployeesResponse{Employees: list}, nil
			}
			items, err := svc.History(empID)
			if err != nil {
				return nil, err
			}
			resp := employee.HistoryResponse{EmployeeID: empID, Segments: make([]employee.SegmentResponse, 0, len(items))}
			for _, it := range items {
				resp.Segments = append(resp.Segments, it.ToResponse())
			}
			return resp, nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Change an employee's full name",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLedger(func(ctx context.Context, svc *employee.Service) (interface{}, error) {
			if err := svc.UpdateFio(empID, empFio); err != nil {
				return nil, err
			}
			return svc.Get(empID)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{hireCmd, transferCmd, fireCmd, cancelCmd, historyCmd, renameCmd} {
		c.Flags().Int64Var(&empID, "id", 0, "employee id")
		employeeCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{hireCmd, transferCmd} {
		c.Flags().Int64Var(&empDept, "department", 0, "department id")
		c.Flags().Int64Var(&empPosition, "position", 0, "position id")
	}
	for _, c := range []*cobra.Command{hireCmd, transferCmd, fireCmd} {
		c.Flags().StringVar(&empDate, "date", "", "effective date, yyyy-MM-dd")
		c.Flags().StringVar(&empNote, "note", "", "free-form note")
		_ = c.MarkFlagRequired("date")
	}
	hireCmd.Flags().StringVar(&empFio, "fio", "", "full name (new hires only)")
	renameCmd.Flags().StringVar(&empFio, "fio", "", "new full name")
	historyCmd.Flags().BoolVar(&empShowFired, "show-fired", false, "include separated employees in the list")

	for _, c := range []*cobra.Command{transferCmd, fireCmd, cancelCmd, renameCmd} {
		_ = c.MarkFlagRequired("id")
	}
}
