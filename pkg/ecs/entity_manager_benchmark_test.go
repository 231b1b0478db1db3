package ecs

import (
	"reflect"
	"testing"
)

type benchCell struct{ X, Y int }

type benchHealth struct{ Current, Max int }

type benchPlan struct{ Steps int }

// setupBenchmarkEntities 创建 count 个实体，每三个实体中有一个带移动计划
func setupBenchmarkEntities(count int) *EntityManager {
	em := NewEntityManager()
	for i := 0; i < count; i++ {
		id := em.CreateEntity()
		em.AddComponent(id, &benchCell{X: i, Y: i})
		em.AddComponent(id, &benchHealth{Current: 10, Max: 10})
		if i%3 == 0 {
			em.AddComponent(id, &benchPlan{Steps: 5})
		}
	}
	return em
}

func BenchmarkGetEntitiesWith_Reflection(b *testing.B) {
	em := setupBenchmarkEntities(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = em.GetEntitiesWith(
			reflect.TypeOf(&benchCell{}),
			reflect.TypeOf(&benchPlan{}),
		)
	}
}

func BenchmarkGetEntitiesWith_Generic(b *testing.B) {
	em := setupBenchmarkEntities(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetEntitiesWith2[*benchCell, *benchPlan](em)
	}
}

// BenchmarkTickLoop 模拟一次阶段更新：查询、修改、标记并清理死亡实体
func BenchmarkTickLoop(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		em := setupBenchmarkEntities(500)
		b.StartTimer()

		for _, id := range GetEntitiesWith2[*benchCell, *benchHealth](em) {
			h, _ := GetComponent[*benchHealth](em, id)
			h.Current--
			if id%7 == 0 {
				em.DestroyEntity(id)
			}
		}
		_ = em.RemoveMarkedEntities()
	}
}
