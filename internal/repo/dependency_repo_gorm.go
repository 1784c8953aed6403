package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Edge 一条依赖边：子表通过外键（或连接表）引用待删父行。
// SampleSQL 可选；连接表场景用它绕一跳取出人看得懂的名称。
type Edge struct {
	Label     string // 依赖方名称，用于错误文案，如 "products"
	Table     string
	FKCol     string
	NameCol   string // 直接边取样列；空则只报 id
	SampleSQL string // 自定义取样查询，? 为父 id，返回一列名称
}

// DeletableEntity 注册了依赖边、需要守护删除的实体
type DeletableEntity struct {
	Table   string
	NameCol string
	Edges   []Edge
}

var deletables = map[string]DeletableEntity{
	"categories": {
		Table: "categories", NameCol: "name",
		Edges: []Edge{
			{Label: "products", Table: "products", FKCol: "category_id", NameCol: "name"},
		},
	},
	"brands": {
		Table: "brands", NameCol: "name",
		Edges: []Edge{
			{Label: "products", Table: "products", FKCol: "brand_id", NameCol: "name"},
		},
	},
	"blog_categories": {
		Table: "blog_categories", NameCol: "name",
		Edges: []Edge{
			{Label: "blogs", Table: "blogs", FKCol: "blog_category_id", NameCol: "title"},
		},
	},
	"agency_categories": {
		Table: "agency_categories", NameCol: "name",
		Edges: []Edge{
			{
				Label: "agencies", Table: "agency_category_links", FKCol: "category_id",
				SampleSQL: "SELECT a.name FROM agency_category_links l JOIN agencies a ON a.id = l.agency_id WHERE l.category_id = ? ORDER BY a.id LIMIT ?",
			},
		},
	},
	"characteristics": {
		Table: "characteristics", NameCol: "name",
		Edges: []Edge{
			{
				Label: "products", Table: "product_characteristics", FKCol: "characteristic_id",
				SampleSQL: "SELECT p.name FROM product_characteristics pc JOIN products p ON p.id = pc.product_id WHERE pc.characteristic_id = ? ORDER BY p.id LIMIT ?",
			},
		},
	},
}

type DependencyRepo struct{ db *gorm.DB }

func NewDependencyRepo(db *gorm.DB) *DependencyRepo { return &DependencyRepo{db: db} }

func (r *DependencyRepo) DB() *gorm.DB { return r.db }

func (r *DependencyRepo) Resolve(entity string) (DeletableEntity, bool) {
	d, ok := deletables[entity]
	return d, ok
}

// Fetch 取出父行（删除成功后原样返回给调用方）
func (r *DependencyRepo) Fetch(ctx context.Context, d DeletableEntity, id int64) (map[string]any, error) {
	row := map[string]any{}
	err := r.db.WithContext(ctx).
		Table(d.Table).
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *DependencyRepo) CountEdge(ctx context.Context, e Edge, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table(e.Table).
		Where(fmt.Sprintf("%s = ?", e.FKCol), id).
		Count(&n).Error
	return n, err
}

// Sample 取前 limit 个依赖行的展示名
func (r *DependencyRepo) Sample(ctx context.Context, e Edge, id int64, limit int) ([]string, error) {
	var names []string
	if e.SampleSQL != "" {
		err := r.db.WithContext(ctx).Raw(e.SampleSQL, id, limit).Scan(&names).Error
		return names, err
	}
	if e.NameCol == "" {
		return nil, nil
	}
	err := r.db.WithContext(ctx).
		Table(e.Table).
		Where(fmt.Sprintf("%s = ?", e.FKCol), id).
		Order("id").
		Limit(limit).
		Pluck(e.NameCol, &names).Error
	return names, err
}

// Delete 执行物理删除，返回受影响行数
func (r *DependencyRepo) Delete(ctx context.Context, d DeletableEntity, id int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.Table), id)
	return res.RowsAffected, res.Error
}
