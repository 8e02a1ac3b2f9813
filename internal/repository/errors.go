package repository

import "errors"

var (
	ErrNotFound       = errors.New("entity not found")
	ErrUpdateFailed   = errors.New("update failed")
	ErrOptimisticLock = errors.New("optimistic lock conflict: data was modified by another process")
)
