package usecase

import (
	"time"

	"wg-parser-service/internal/core/domain"
)

// Reconcile сверяет сохраненные записи города с активным множеством.
// Меняются только IsActive и TsDeactivated; id из активного множества без записи игнорируются.
// Changes содержит только записи, у которых хотя бы одно из этих полей изменилось.
func Reconcile(records []domain.AdRecord, active map[int64]struct{}, now time.Time, policy domain.StampPolicy) domain.ReconcileResult {
	res := domain.ReconcileResult{
		Records: make([]domain.AdRecord, 0, len(records)),
	}
	res.Stats.Total = len(records)

	for _, prev := range records {
		next := prev

		if _, ok := active[prev.AdID]; ok {
			next.IsActive = true
			next.TsDeactivated = nil
			res.Stats.Active++
			if !prev.IsActive {
				res.Stats.Reactivated++
			}
		} else {
			next.IsActive = false
			if policy == domain.RestampEveryRun || prev.IsActive || prev.TsDeactivated == nil {
				stamp := now
				next.TsDeactivated = &stamp
			}
			res.Stats.Inactive++
			if prev.IsActive {
				res.Stats.Deactivated++
			} else if !sameTime(prev.TsDeactivated, next.TsDeactivated) {
				res.Stats.Restamped++
			}
		}

		res.Records = append(res.Records, next)
		if next.IsActive != prev.IsActive || !sameTime(prev.TsDeactivated, next.TsDeactivated) {
			res.Changes = append(res.Changes, next)
		}
	}

	return res
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
