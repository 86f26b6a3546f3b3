package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentalReturn_AssessDamage(t *testing.T) {
	cleaning := MustMoney("25.00")

	t.Run("FeesAndReport", func(t *testing.T) {
		rr := newTestReturn(t, 1, 1)
		l1, l2 := rr.Lines()[0], rr.Lines()[1]
		repair := MustMoney("120.00")
		replacement := MustMoney("300.00")
		d := ConditionGradeD

		rep, err := rr.AssessDamage(DamageAssessmentInput{
			InspectorID: 9,
			Assessments: []LineAssessment{
				{LineID: l1.ID(), ConditionGrade: &d, EstimatedRepairCost: &repair, DamageDescription: "cracked", CleaningRequired: true},
				{LineID: l2.ID(), ReplacementRequired: true, ReplacementFee: &replacement},
			},
			DefaultCleaningFee: cleaning,
		}, testNow)
		require.NoError(t, err)

		assert.Equal(t, ReturnStatusInInspection, rr.Status())
		assert.Equal(t, DamageLevelMajor, l1.DamageLevel())
		assert.Equal(t, ConditionGradeD, l1.ConditionGrade())
		assert.Equal(t, "25.00", l1.CleaningFee().String())
		assert.Equal(t, DamageLevelTotalLoss, l2.DamageLevel())
		assert.Equal(t, "445.00", rr.TotalFees().String())

		assert.True(t, rep.DamageFound())
		assert.Equal(t, DamageLevelMajor, rep.DamageLevel())
		assert.Len(t, rep.Findings(), 2)
		assert.Equal(t, InspectionStatusInProgress, rep.Status())
	})

	t.Run("NoDamage", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		rep, err := rr.AssessDamage(DamageAssessmentInput{
			InspectorID:        9,
			Assessments:        []LineAssessment{{LineID: rr.Lines()[0].ID()}},
			DefaultCleaningFee: cleaning,
		}, testNow)
		require.NoError(t, err)
		assert.False(t, rep.DamageFound())
		assert.Equal(t, DamageLevelNone, rep.DamageLevel())
		assert.Contains(t, rep.Notes(), "no damage found")
	})

	t.Run("ValidatesBeforeChanging", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		bad := ConditionGrade("Q")
		repair := MustMoney("10")
		_, err := rr.AssessDamage(DamageAssessmentInput{
			InspectorID: 9,
			Assessments: []LineAssessment{
				{LineID: rr.Lines()[0].ID(), EstimatedRepairCost: &repair, ConditionGrade: &bad},
			},
		}, testNow)
		assert.True(t, errors.Is(err, ErrValidationFailure))
		assert.True(t, rr.TotalFees().IsZero())
		assert.Equal(t, ReturnStatusInitiated, rr.Status())
	})

	t.Run("NoInspector", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		_, err := rr.AssessDamage(DamageAssessmentInput{Assessments: []LineAssessment{{LineID: rr.Lines()[0].ID()}}}, testNow)
		assert.True(t, errors.Is(err, ErrValidationFailure))
	})

	t.Run("CancelledReturn", func(t *testing.T) {
		rr := newTestReturn(t, 1)
		require.NoError(t, rr.Cancel("mistake", nil, testNow))
		_, err := rr.AssessDamage(DamageAssessmentInput{InspectorID: 9, Assessments: []LineAssessment{{LineID: rr.Lines()[0].ID()}}}, testNow)
		assert.True(t, errors.Is(err, ErrInvalidState))
	})
}

func TestRentalReturn_CompleteInspection(t *testing.T) {
	rr := newTestReturn(t, 1)
	rep, err := rr.AssessDamage(DamageAssessmentInput{InspectorID: 9, Assessments: []LineAssessment{{LineID: rr.Lines()[0].ID()}}}, testNow)
	require.NoError(t, err)

	_, err = rr.CompleteInspection(rep.ID(), false, 3, "", testNow)
	assert.True(t, errors.Is(err, ErrValidationFailure))

	_, err = rr.CompleteInspection(rep.ID(), false, 3, "photos missing", testNow)
	require.NoError(t, err)
	assert.True(t, rep.IsRejected())
	assert.Equal(t, "photos missing", rep.RejectionNotes())
	assert.False(t, rr.HasApprovedInspection())

	_, err = rr.CompleteInspection(rep.ID(), true, 3, "", testNow)
	assert.True(t, errors.Is(err, ErrInvalidState))

	require.NoError(t, rep.AppendNote("re-shot photos", nil, testNow))
	assert.Error(t, rep.AppendNote("  ", nil, testNow))

	restored, err := RestoreInspectionReport(rep.State())
	require.NoError(t, err)
	assert.Equal(t, rep.State(), restored.State())
}
