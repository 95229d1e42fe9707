package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
)

func sp(v string) *string { return &v }

func filterFixtures() []models.Material {
	return []models.Material{
		{ID: 4, Title: "Kinematics", Subject: sp("Physics"), Semester: sp("1"), GroupName: sp("A"), UploadYear: sp("2024"), Type: sp("Notes"), Approved: true},
		{ID: 3, Title: "Derivatives", Subject: sp("Math"), Semester: sp("2"), GroupName: sp("B"), UploadYear: sp("2023"), Type: sp("Exam"), Approved: true},
		{ID: 2, Title: "Untagged", Approved: true},
		{ID: 1, Title: "Optics", Subject: sp("physics"), Semester: sp("2"), GroupName: sp("A"), UploadYear: sp("2024"), Type: sp("Notes"), Approved: true},
	}
}

func idsOf(items []models.Material) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestIsWildcard(t *testing.T) {
	for _, v := range []string{"", "  ", "All", "all", " ALL "} {
		assert.True(t, IsWildcard(v), v)
	}
	for _, v := range []string{"Allx", "1", "none"} {
		assert.False(t, IsWildcard(v), v)
	}
}

func TestFilterMaterialsWildcardKeepsEverythingInOrder(t *testing.T) {
	items := filterFixtures()
	criteria := dto.MaterialFilter{Semester: "All", Subject: "", Group: "all", Year: "ALL", Type: " "}

	for _, policy := range []NullPolicy{NullMatches, NullFails} {
		assert.Equal(t, []int64{4, 3, 2, 1}, idsOf(FilterMaterials(items, criteria, policy)))
	}
}

func TestFilterMaterialsCaseInsensitive(t *testing.T) {
	got := FilterMaterials(filterFixtures(), dto.MaterialFilter{Subject: "PHYSICS"}, NullFails)
	assert.Equal(t, []int64{4, 1}, idsOf(got))
}

func TestFilterMaterialsNullPolicy(t *testing.T) {
	criteria := dto.MaterialFilter{Subject: "physics", Group: "A"}

	assert.Equal(t, []int64{4, 2, 1}, idsOf(FilterMaterials(filterFixtures(), criteria, NullMatches)))
	assert.Equal(t, []int64{4, 1}, idsOf(FilterMaterials(filterFixtures(), criteria, NullFails)))
}

func TestFilterMaterialsCombinesCriteria(t *testing.T) {
	criteria := dto.MaterialFilter{Semester: "2", Year: "2024", Type: "notes"}
	assert.Equal(t, []int64{1}, idsOf(FilterMaterials(filterFixtures(), criteria, NullFails)))
}

func TestFilterMaterialsEmptyInput(t *testing.T) {
	got := FilterMaterials(nil, dto.MaterialFilter{Subject: "Math"}, NullMatches)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
