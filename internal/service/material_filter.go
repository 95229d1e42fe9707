package service

import (
	"strings"

	"github.com/noah-isme/student-resources-api/internal/dto"
	"github.com/noah-isme/student-resources-api/internal/models"
)

// WildcardToken matches every record when used as a criterion.
const WildcardToken = "All"

// NullPolicy decides how a material lacking a filtered attribute is treated.
type NullPolicy int

const (
	// NullMatches lets a missing attribute pass any criterion.
	NullMatches NullPolicy = iota
	// NullFails rejects a missing attribute for every non-wildcard criterion.
	NullFails
)

// IsWildcard reports whether a criterion value selects everything: blank, or "All" in any case.
func IsWildcard(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || strings.EqualFold(trimmed, WildcardToken)
}

// FilterMaterials keeps the materials matching every criterion, preserving input order.
// The input is expected to hold approved materials only.
func FilterMaterials(items []models.Material, criteria dto.MaterialFilter, policy NullPolicy) []models.Material {
	checks := []struct {
		want string
		get  func(*models.Material) *string
	}{
		{criteria.Semester, func(m *models.Material) *string { return m.Semester }},
		{criteria.Subject, func(m *models.Material) *string { return m.Subject }},
		{criteria.Group, func(m *models.Material) *string { return m.GroupName }},
		{criteria.Year, func(m *models.Material) *string { return m.UploadYear }},
		{criteria.Type, func(m *models.Material) *string { return m.Type }},
	}

	result := make([]models.Material, 0, len(items))
	for i := range items {
		matched := true
		for _, check := range checks {
			if !matchCriterion(check.get(&items[i]), check.want, policy) {
				matched = false
				break
			}
		}
		if matched {
			result = append(result, items[i])
		}
	}
	return result
}

func matchCriterion(value *string, want string, policy NullPolicy) bool {
	if IsWildcard(want) {
		return true
	}
	if value == nil {
		return policy == NullMatches
	}
	return strings.EqualFold(strings.TrimSpace(*value), strings.TrimSpace(want))
}
