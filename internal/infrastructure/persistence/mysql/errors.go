package mysql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// MySQL错误码
const (
	errDuplicateEntry  = 1062 // Duplicate entry 'xxx' for key 'yyy'
	errLockWaitTimeout = 1205 // Lock wait timeout exceeded
	errDeadlock        = 1213 // Deadlock found when trying to get lock
	errNoReferencedRow = 1452 // Cannot add or update a child row: a foreign key constraint fails
)

// isDuplicateError 判断是否为唯一索引冲突
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if mysqlErrorNumber(err) == errDuplicateEntry {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 兼容检查:错误信息包含"Duplicate entry"
	return strings.Contains(err.Error(), "Duplicate entry")
}

// isForeignKeyError 引用的父行不存在
func isForeignKeyError(err error) bool {
	return mysqlErrorNumber(err) == errNoReferencedRow || errors.Is(err, gorm.ErrForeignKeyViolated)
}

// isRetryableTxError 死锁或锁等待超时，整个事务可以安全重试
func isRetryableTxError(err error) bool {
	switch mysqlErrorNumber(err) {
	case errDeadlock, errLockWaitTimeout:
		return true
	}
	return false
}

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

// escapeLike 转义LIKE通配符,搜索词按字面匹配
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
