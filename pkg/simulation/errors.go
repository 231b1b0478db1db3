package simulation

import (
	"errors"
	"fmt"

	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/systems"
)

// PreconditionError 调用方违反前置条件时 panic 的值
// 引用不存在的实体、指挥其他阵营的实体、网格守卫失败都属于此类
type PreconditionError = systems.PreconditionError

var (
	// ErrUnknownEntity 指令引用了不存在的实体
	ErrUnknownEntity = systems.ErrUnknownEntity
	// ErrNotOwner 发令阵营不拥有行动者
	ErrNotOwner = systems.ErrNotOwner
	// ErrRejected 软拒绝：指令被忽略，状态不变
	ErrRejected = errors.New("command rejected")
	// ErrNoPath 找不到路线，行动者回到空闲
	ErrNoPath = errors.New("no path")
)

// RejectionError 指令被软拒绝的原因
type RejectionError struct {
	Command string
	Entity  ecs.EntityID
	Reason  string
	Err     error // ErrRejected 或 ErrNoPath
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s rejected for entity %d: %s", e.Command, e.Entity, e.Reason)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// Is 所有软拒绝都匹配 ErrRejected
func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}

// class 指标标签：no_path 或 rejected
func (e *RejectionError) class() string {
	if e.Err == ErrNoPath {
		return "no_path"
	}
	return "rejected"
}

func reject(command string, id ecs.EntityID, reason string) *RejectionError {
	return &RejectionError{Command: command, Entity: id, Reason: reason, Err: ErrRejected}
}

func rejectNoPath(command string, id ecs.EntityID) *RejectionError {
	return &RejectionError{Command: command, Entity: id, Reason: "no path", Err: ErrNoPath}
}
