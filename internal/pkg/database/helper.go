package database

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Paginate 分页（page 从 1 开始）
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		if pageSize <= 0 {
			pageSize = 10
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// OrderBy 排序
func OrderBy(field string, desc bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if desc {
			return db.Order(field + " DESC")
		}
		return db.Order(field + " ASC")
	}
}

// WhereIf 条件查询
func WhereIf(condition bool, query interface{}, args ...interface{}) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if condition {
			return db.Where(query, args...)
		}
		return db
	}
}

// ContainsFold matches rows whose column contains value, ignoring case.
// LOWER + LIKE behaves the same on postgres and sqlite.
func ContainsFold(column, value string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+EscapeLike(strings.ToLower(value))+"%")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards in s
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// BatchInsert 批量插入
func BatchInsert(ctx context.Context, db *gorm.DB, records interface{}, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	return db.WithContext(ctx).CreateInBatches(records, batchSize).Error
}

// FindInBatches 分批查询
func FindInBatches(ctx context.Context, db *gorm.DB, dest interface{}, batchSize int, fn func(tx *gorm.DB, batch int) error) error {
	return db.WithContext(ctx).FindInBatches(dest, batchSize, fn).Error
}

// Count 统计数量
func Count(ctx context.Context, db *gorm.DB, model interface{}, query interface{}, args ...interface{}) (int64, error) {
	var count int64
	q := db.WithContext(ctx).Model(model)
	if query != nil {
		q = q.Where(query, args...)
	}
	err := q.Count(&count).Error
	return count, err
}
