package aggregation_test

import (
	"time"

	"github.com/frahmantamala/missiontime/internal/aggregation"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func date(s string) time.Time {
	d, err := dateutil.Parse(s)
	Expect(err).NotTo(HaveOccurred())
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

var _ = Describe("Window", func() {
	january := aggregation.MonthWindow(2025, time.January)

	DescribeTable("Clip",
		func(start string, end *time.Time, wantOK bool, wantStart, wantEnd string) {
			w, ok := aggregation.Clip(date(start), end, january)
			Expect(ok).To(Equal(wantOK))
			if !wantOK {
				return
			}
			Expect(dateutil.Format(w.Start)).To(Equal(wantStart))
			Expect(dateutil.Format(w.End)).To(Equal(wantEnd))
		},
		Entry("open segment starting mid-month", "2025-01-10", nil, true, "2025-01-10", "2025-01-31"),
		Entry("open segment starting before the month", "2024-06-01", nil, true, "2025-01-01", "2025-01-31"),
		Entry("segment ending mid-month", "2024-12-01", datePtr("2025-01-20"), true, "2025-01-01", "2025-01-20"),
		Entry("single day on the last day", "2025-01-31", datePtr("2025-01-31"), true, "2025-01-31", "2025-01-31"),
		Entry("segment ended before the month", "2024-01-01", datePtr("2024-12-31"), false, "", ""),
		Entry("segment starting after the month", "2025-02-01", nil, false, "", ""),
	)

	It("should count inclusive days", func() {
		Expect(january.Days()).To(Equal(31))
		Expect(aggregation.NewWindow(date("2025-01-05"), date("2025-01-05")).Days()).To(Equal(1))
		Expect(aggregation.NewWindow(date("2025-01-05"), date("2025-01-04")).Empty()).To(BeTrue())
	})

	It("should treat both ends as inside", func() {
		Expect(january.Contains(date("2025-01-01"))).To(BeTrue())
		Expect(january.Contains(date("2025-01-31"))).To(BeTrue())
		Expect(january.Contains(date("2025-02-01"))).To(BeFalse())
	})
})

var _ = Describe("ProgramCalendar", func() {
	It("should start on the program start and end every week on Sunday", func() {
		// 2025-01-08 is a Wednesday
		weeks := aggregation.ProgramCalendar(date("2025-01-08"), date("2025-01-22"))
		Expect(weeks).To(HaveLen(3))
		Expect(weeks[0].Number).To(Equal(1))
		Expect(dateutil.Format(weeks[0].Start)).To(Equal("2025-01-08"))
		Expect(dateutil.Format(weeks[0].End)).To(Equal("2025-01-12"))
		Expect(dateutil.Format(weeks[1].Start)).To(Equal("2025-01-13"))
		Expect(dateutil.Format(weeks[1].End)).To(Equal("2025-01-19"))
		Expect(dateutil.Format(weeks[2].End)).To(Equal("2025-01-22"))
	})

	It("should be empty when the end precedes the start", func() {
		Expect(aggregation.ProgramCalendar(date("2025-02-01"), date("2025-01-01"))).To(BeEmpty())
	})
})

var _ = Describe("ByWeek", func() {
	It("should drop days outside every week", func() {
		weeks := []aggregation.Week{
			{Number: 2, Start: date("2025-01-13"), End: date("2025-01-19")},
			{Number: 3, Start: date("2025-01-20"), End: date("2025-01-26")},
		}
		work := aggregation.WorkItemRef{WorkItemID: 7, Name: "Design"}
		days := []aggregation.WorkDay{
			{WorkItemRef: work, WorkDate: date("2025-01-10"), Minutes: 100},
			{WorkItemRef: work, WorkDate: date("2025-01-13"), Minutes: 30},
			{WorkItemRef: work, WorkDate: date("2025-01-19"), Minutes: 15},
			{WorkItemRef: work, WorkDate: date("2025-01-21"), Minutes: 60},
			{WorkItemRef: work, WorkDate: date("2025-01-27"), Minutes: 100},
		}
		Expect(aggregation.ByWeek(days, weeks)).To(Equal(map[int64][]int{7: {45, 60}}))
	})
})

var _ = Describe("DayCell", func() {
	It("should render each state distinctly", func() {
		Expect(aggregation.DayCell{State: aggregation.NotApplicable}.Display()).To(Equal("-"))
		Expect(aggregation.DayCell{State: aggregation.OutOfMonth}.Display()).To(Equal(""))
		Expect(aggregation.DayCell{State: aggregation.Active}.Display()).To(Equal("0:00"))
		Expect(aggregation.DayCell{State: aggregation.Active, Minutes: 90}.Display()).To(Equal("1:30"))
	})

	It("should clamp negative minutes", func() {
		Expect(aggregation.FormatMinutes(-5)).To(Equal("0:00"))
		Expect(aggregation.FormatMinutes(605)).To(Equal("10:05"))
	})
})

var _ = Describe("WorkItemRef", func() {
	It("should prefix the code when present", func() {
		Expect(aggregation.WorkItemRef{Name: "Design", SpecialCode: "D1"}.DisplayName()).To(Equal("D1 — Design"))
		Expect(aggregation.WorkItemRef{Name: "Design", SpecialCode: "  "}.DisplayName()).To(Equal("Design"))
	})
})
