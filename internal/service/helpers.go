package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isUniqueViolation 判断是否为唯一约束冲突
// TranslateError 开启时为 gorm.ErrDuplicatedKey；保险起见兼容原始 SQLSTATE
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "SQLSTATE 23505")
}
