package employee_test

import (
	errors "github.com/frahmantamala/missiontime/internal"
	"github.com/frahmantamala/missiontime/internal/employee"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transition", func() {
	DescribeTable("legal moves",
		func(from employee.State, op employee.Operation, to employee.State) {
			got, err := employee.Transition(from, op)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(to))
		},
		Entry("hire a new employee", employee.StateNone, employee.OpHire, employee.StateActive),
		Entry("rehire a separated employee", employee.StateSeparated, employee.OpHire, employee.StateActive),
		Entry("transfer an active employee", employee.StateActive, employee.OpTransfer, employee.StateActive),
		Entry("fire an active employee", employee.StateActive, employee.OpFire, employee.StateSeparated),
		Entry("cancel a transfer", employee.StateActive, employee.OpCancel, employee.StateActive),
		Entry("cancel a fire", employee.StateSeparated, employee.OpCancel, employee.StateActive),
	)

	DescribeTable("illegal moves",
		func(from employee.State, op employee.Operation, errType errors.ErrorType) {
			got, err := employee.Transition(from, op)
			Expect(errors.IsType(err, errType)).To(BeTrue())
			Expect(got).To(Equal(from))
		},
		Entry("hire an active employee", employee.StateActive, employee.OpHire, errors.ErrorTypeValidation),
		Entry("transfer a separated employee", employee.StateSeparated, employee.OpTransfer, errors.ErrorTypeInvalidTransition),
		Entry("fire a separated employee", employee.StateSeparated, employee.OpFire, errors.ErrorTypeInvalidTransition),
		Entry("fire an employee never hired", employee.StateNone, employee.OpFire, errors.ErrorTypeInvalidTransition),
		Entry("cancel with no history", employee.StateNone, employee.OpCancel, errors.ErrorTypeInvalidTransition),
	)
})

var _ = Describe("Segment", func() {
	It("should cover days between start and end inclusive", func() {
		end := dateutil.Date(2025, 1, 31)
		seg := &employee.Segment{StartDate: dateutil.Date(2025, 1, 10), EndDate: &end}

		Expect(seg.Covers(dateutil.Date(2025, 1, 9))).To(BeFalse())
		Expect(seg.Covers(dateutil.Date(2025, 1, 10))).To(BeTrue())
		Expect(seg.Covers(dateutil.Date(2025, 1, 31))).To(BeTrue())
		Expect(seg.Covers(dateutil.Date(2025, 2, 1))).To(BeFalse())
	})

	It("should derive the state from the segments", func() {
		end := dateutil.Date(2025, 1, 31)
		closed := &employee.Segment{StartDate: dateutil.Date(2025, 1, 10), EndDate: &end}
		open := &employee.Segment{StartDate: dateutil.Date(2025, 2, 1)}

		Expect(employee.StateOf(nil)).To(Equal(employee.StateNone))
		Expect(employee.StateOf([]*employee.Segment{closed})).To(Equal(employee.StateSeparated))
		Expect(employee.StateOf([]*employee.Segment{closed, open})).To(Equal(employee.StateActive))
	})
})
