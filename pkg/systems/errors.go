package systems

import (
	"errors"
	"fmt"

	"github.com/gonewx/rts/pkg/ecs"
)

// ErrUnknownEntity 引用了不存在的实体
var ErrUnknownEntity = errors.New("unknown entity")

// ErrNotOwner 发令阵营不拥有该实体
var ErrNotOwner = errors.New("entity not owned by issuing team")

var errNoCombat = errors.New("entity has no combat component")

// PreconditionError 调用方违反前置条件（引用不存在的实体、越权指挥、网格守卫失败）
// 以 panic 的形式抛出，表示上层逻辑有误而不是可恢复的运行时状况
type PreconditionError struct {
	Op     string
	Entity ecs.EntityID
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Entity == ecs.InvalidEntity {
		return fmt.Sprintf("precondition violated in %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("precondition violated in %s (entity %d): %v", e.Op, e.Entity, e.Err)
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

func errUnknownKind(kind string) error {
	return fmt.Errorf("unknown kind %q", kind)
}
