package catalog_test

import (
	"github.com/frahmantamala/missiontime/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Department tree", func() {
	depts := func() []*catalog.Department {
		return []*catalog.Department{
			{ID: 4, ParentID: int64Ptr(2), Name: "Dept B", Level: catalog.LevelDepartment},
			{ID: 1, Name: "Center", Level: catalog.LevelCenter},
			{ID: 3, ParentID: int64Ptr(2), Name: "Dept A", Level: catalog.LevelDepartment},
			{ID: 2, ParentID: int64Ptr(1), Name: "Complex", Level: catalog.LevelComplex},
			{ID: 5, ParentID: int64Ptr(3), Name: "Group", Level: catalog.LevelGroup, SortOrder: 1},
		}
	}

	It("should order nodes depth first with siblings by sort order then name", func() {
		tree := catalog.BuildTree(depts())

		ids := make([]int64, len(tree))
		for i, n := range tree {
			ids[i] = n.ID
		}
		Expect(ids).To(Equal([]int64{1, 2, 3, 5, 4}))
		Expect(tree[3].Depth).To(Equal(3))
	})

	It("should treat nodes with a missing parent as roots", func() {
		tree := catalog.BuildTree([]*catalog.Department{{ID: 7, ParentID: int64Ptr(99), Name: "Orphan"}})
		Expect(tree).To(HaveLen(1))
		Expect(tree[0].Depth).To(Equal(0))
	})

	It("should map each department to itself and its ancestors", func() {
		anc := catalog.Ancestors(depts())
		Expect(anc[5]).To(Equal([]int64{5, 3, 2, 1}))
		Expect(anc[1]).To(Equal([]int64{1}))
	})
})
