package repo

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// OrderedTable 支持手工排序的表。Label 是确认回包里展示名的来源列。
type OrderedTable struct {
	Table string
	Label string
}

var orderedTables = map[string]OrderedTable{
	"categories": {Table: "categories", Label: "name"},
	"products":   {Table: "products", Label: "name"},
	"banners":    {Table: "banners", Label: "title"},
}

// OrderPair 一条重排项：id -> 新 order_key
type OrderPair struct {
	ID  int64
	Key int64
}

// OrderedRow 重排后的确认行
type OrderedRow struct {
	ID    int64  `json:"id"`
	Index int64  `json:"index" gorm:"column:order_key"`
	Name  string `json:"name"`
}

type ReorderRepo struct{ db *gorm.DB }

func NewReorderRepo(db *gorm.DB) *ReorderRepo { return &ReorderRepo{db: db} }

func (r *ReorderRepo) DB() *gorm.DB { return r.db }

func (r *ReorderRepo) Resolve(entity string) (OrderedTable, bool) {
	t, ok := orderedTables[entity]
	return t, ok
}

// ExistingIDs 返回 ids 中确实存在的那部分
func (r *ReorderRepo) ExistingIDs(ctx context.Context, tx *gorm.DB, t OrderedTable, ids []int64) ([]int64, error) {
	var found []int64
	err := tx.WithContext(ctx).
		Table(t.Table).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	return found, err
}

// HeldOutside 返回已被「批次之外的行」占用的 order_key 值
func (r *ReorderRepo) HeldOutside(ctx context.Context, tx *gorm.DB, t OrderedTable, keys, ids []int64) ([]int64, error) {
	var held []int64
	err := tx.WithContext(ctx).
		Table(t.Table).
		Where("order_key IN ?", keys).
		Where("id NOT IN ?", ids).
		Pluck("order_key", &held).Error
	return held, err
}

// Apply 批量改写 order_key。先把批次内的行清成 NULL 腾出键位，
// 再用单条 CASE UPDATE 一次性赋值 —— 两条语句必须同处一个事务，
// 交换键位（5↔7 之类）才不会在逐行约束检查时误报唯一冲突。
func (r *ReorderRepo) Apply(ctx context.Context, tx *gorm.DB, t OrderedTable, pairs []OrderPair) error {
	ids := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, p.ID)
	}
	if err := tx.WithContext(ctx).
		Table(t.Table).
		Where("id IN ?", ids).
		Update("order_key", nil).Error; err != nil {
		return err
	}

	var b strings.Builder
	args := make([]any, 0, len(pairs)*2+len(pairs))
	fmt.Fprintf(&b, "UPDATE %s SET order_key = CASE id", t.Table)
	for _, p := range pairs {
		b.WriteString(" WHEN ? THEN ?")
		args = append(args, p.ID, p.Key)
	}
	b.WriteString(" END WHERE id IN ?")
	args = append(args, ids)

	return tx.WithContext(ctx).Exec(b.String(), args...).Error
}

// Rows 读回批次内的行用于确认回包
func (r *ReorderRepo) Rows(ctx context.Context, tx *gorm.DB, t OrderedTable, ids []int64) ([]OrderedRow, error) {
	var rows []OrderedRow
	err := tx.WithContext(ctx).
		Raw(fmt.Sprintf("SELECT id, order_key, %s AS name FROM %s WHERE id IN ? ORDER BY order_key", t.Label, t.Table), ids).
		Scan(&rows).Error
	return rows, err
}
