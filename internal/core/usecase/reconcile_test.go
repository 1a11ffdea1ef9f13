package usecase

import (
	"testing"
	"time"

	"wg-parser-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestReconcile_Scenario(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.AdRecord{
		{AdID: 1, CityName: "munich", IsActive: true},
		{AdID: 2, CityName: "munich", IsActive: true},
		{AdID: 3, CityName: "munich", IsActive: false},
	}

	for _, policy := range []domain.StampPolicy{domain.StampOnTransition, domain.RestampEveryRun} {
		t.Run(string(policy), func(t *testing.T) {
			res := Reconcile(records, idSet(1, 3), now, policy)

			require.Len(t, res.Records, 3)
			assert.Equal(t, domain.AdRecord{AdID: 1, CityName: "munich", IsActive: true}, res.Records[0])
			assert.False(t, res.Records[1].IsActive)
			require.NotNil(t, res.Records[1].TsDeactivated)
			assert.True(t, now.Equal(*res.Records[1].TsDeactivated))
			assert.Equal(t, domain.AdRecord{AdID: 3, CityName: "munich", IsActive: true}, res.Records[2])

			// запись 1 не изменилась и в изменения не попадает
			require.Len(t, res.Changes, 2)
			assert.Equal(t, int64(2), res.Changes[0].AdID)
			assert.Equal(t, int64(3), res.Changes[1].AdID)

			assert.Equal(t, domain.ReconcileStats{Total: 3, Active: 2, Inactive: 1, Deactivated: 1, Reactivated: 1}, res.Stats)
		})
	}
}

func TestReconcile_ActiveClearsStamp(t *testing.T) {
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.AdRecord{{AdID: 5, IsActive: false, TsDeactivated: ptrTime(old)}}

	res := Reconcile(records, idSet(5), time.Now(), domain.StampOnTransition)
	assert.True(t, res.Records[0].IsActive)
	assert.Nil(t, res.Records[0].TsDeactivated)
	assert.Len(t, res.Changes, 1)
}

func TestReconcile_StampOnTransitionKeepsFirstStamp(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(24 * time.Hour)
	records := []domain.AdRecord{{AdID: 9, IsActive: false, TsDeactivated: ptrTime(first)}}

	res := Reconcile(records, idSet(), later, domain.StampOnTransition)
	assert.True(t, first.Equal(*res.Records[0].TsDeactivated))
	assert.Empty(t, res.Changes)
}

func TestReconcile_StampOnTransitionFillsMissingStamp(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.AdRecord{{AdID: 9, IsActive: false}}

	res := Reconcile(records, idSet(), now, domain.StampOnTransition)
	require.NotNil(t, res.Records[0].TsDeactivated)
	assert.True(t, now.Equal(*res.Records[0].TsDeactivated))
	assert.Len(t, res.Changes, 1)
	assert.Equal(t, 1, res.Stats.Restamped)
}

func TestReconcile_RestampEveryRun(t *testing.T) {
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(24 * time.Hour)
	records := []domain.AdRecord{{AdID: 9, IsActive: false, TsDeactivated: ptrTime(first)}}

	res := Reconcile(records, idSet(), later, domain.RestampEveryRun)
	assert.True(t, later.Equal(*res.Records[0].TsDeactivated))
	assert.Len(t, res.Changes, 1)
	assert.Equal(t, 1, res.Stats.Restamped)
}

func TestReconcile_IgnoresUnknownActiveIDs(t *testing.T) {
	records := []domain.AdRecord{{AdID: 1, IsActive: true}}

	res := Reconcile(records, idSet(1, 42), time.Now(), domain.StampOnTransition)
	assert.Len(t, res.Records, 1)
	assert.Empty(t, res.Changes)
}

func TestReconcile_IdempotentActivity(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.AdRecord{
		{AdID: 1, IsActive: true},
		{AdID: 2, IsActive: true},
		{AdID: 3, IsActive: false},
		{AdID: 4, IsActive: false, TsDeactivated: ptrTime(t0)},
	}
	active := idSet(2, 3)

	first := Reconcile(records, active, t0.Add(time.Hour), domain.StampOnTransition)
	second := Reconcile(first.Records, active, t0.Add(2*time.Hour), domain.StampOnTransition)

	for i := range first.Records {
		assert.Equal(t, first.Records[i].IsActive, second.Records[i].IsActive)
	}
	assert.Empty(t, second.Changes, "second run with the same active set changes nothing")
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	records := []domain.AdRecord{{AdID: 1, IsActive: true}}
	_ = Reconcile(records, idSet(), time.Now(), domain.StampOnTransition)
	assert.True(t, records[0].IsActive)
	assert.Nil(t, records[0].TsDeactivated)
}
