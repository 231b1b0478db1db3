package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gonewx/rts/pkg/types"
)

func TestMovementPlanPopsFromEnd(t *testing.T) {
	// 寻路结果：目标端在前
	path := []types.Point{types.Pt(2, 0), types.Pt(1, 0)}
	plan := NewMovementPlan(path)
	path[0] = types.Pt(9, 9) // 计划持有自己的副本

	next, ok := plan.Next()
	assert.True(t, ok)
	assert.Equal(t, types.Pt(1, 0), next)

	plan.Advance()
	next, _ = plan.Next()
	assert.Equal(t, types.Pt(2, 0), next)
	assert.Equal(t, 1, plan.Len())

	plan.Advance()
	assert.True(t, plan.Empty())
	_, ok = plan.Next()
	assert.False(t, ok)

	plan.Advance() // 空计划上无副作用
	assert.True(t, plan.Empty())
}

func TestStateAllowedFor(t *testing.T) {
	assert.True(t, StateIdle.AllowedFor(PhysicalUnit))
	assert.True(t, StateIdle.AllowedFor(PhysicalStructure))
	assert.True(t, StateMoving.AllowedFor(PhysicalUnit))
	assert.False(t, StateMoving.AllowedFor(PhysicalStructure))
	assert.False(t, StateTraining.AllowedFor(PhysicalUnit))
	assert.True(t, StateTraining.AllowedFor(PhysicalStructure))
}

func TestBehaviorString(t *testing.T) {
	b := BehaviorComponent{State: StateAttacking, Target: 7}
	assert.Equal(t, "Attacking(7)", b.String())

	b = BehaviorComponent{State: StateConstructing, Kind: "barracks", Site: types.Pt(3, 4)}
	assert.Equal(t, "Constructing(barracks@[3,4])", b.String())

	b.Reset()
	assert.Equal(t, "Idle", b.String())
}

func TestTrainingFraction(t *testing.T) {
	tr := TrainingComponent{Active: true, Progress: 1.5, Duration: 3}
	assert.InDelta(t, 0.5, tr.Fraction(), 1e-9)
	tr.Progress = 4
	assert.Equal(t, 1.0, tr.Fraction())
	tr.Active = false
	assert.Equal(t, 0.0, tr.Fraction())
}
