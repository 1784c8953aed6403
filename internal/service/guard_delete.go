package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/repo"
)

// SampleLimit 阻塞报告里最多列出的依赖行名称数
const SampleLimit = 3

// DeletionReport 守护删除的结果。Blocked 只是本次请求的结论，
// 不落库；实体要么被删、要么原样留在表里。
type DeletionReport struct {
	Blocked        bool           `json:"blocked"`
	DependentCount int64          `json:"dependent_count,omitempty"`
	DependentType  string         `json:"dependent_type,omitempty"`
	Sample         []string       `json:"sample,omitempty"`
	Row            map[string]any `json:"row,omitempty"` // 删除成功时的原行
}

// GuardDeleteService 先数依赖行再删。先查后删不可能完全无竞态，
// 外键约束才是最后防线 —— 约束报错同样折算成 Conflict 返回。
type GuardDeleteService struct {
	repo *repo.DependencyRepo
	log  *zap.Logger
}

func NewGuardDeleteService(r *repo.DependencyRepo, log *zap.Logger) *GuardDeleteService {
	return &GuardDeleteService{repo: r, log: log}
}

func (s *GuardDeleteService) Delete(ctx context.Context, entity string, id int64) (*DeletionReport, error) {
	d, ok := s.repo.Resolve(entity)
	if !ok {
		return nil, errs.NotFound("unknown guarded entity %q", entity)
	}
	if id <= 0 {
		return nil, errs.Validation("invalid id: %d", id)
	}

	row, err := s.repo.Fetch(ctx, d, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("%s %d not found", entity, id)
		}
		return nil, errs.Internal("fetch before delete failed", err)
	}

	var (
		total    int64
		blocking *repo.Edge
	)
	for i := range d.Edges {
		n, err := s.repo.CountEdge(ctx, d.Edges[i], id)
		if err != nil {
			return nil, errs.Internal("dependency count failed", err)
		}
		if n > 0 && blocking == nil {
			blocking = &d.Edges[i]
		}
		total += n
	}

	if total > 0 {
		sample, err := s.repo.Sample(ctx, *blocking, id, SampleLimit)
		if err != nil {
			return nil, errs.Internal("dependency sample failed", err)
		}
		report := &DeletionReport{
			Blocked:        true,
			DependentCount: total,
			DependentType:  blocking.Label,
			Sample:         sample,
		}
		e := errs.Conflict("cannot delete: %d %s reference this row", total, blocking.Label)
		e.Payload = report
		e.Details = sample
		return report, e
	}

	affected, err := s.repo.Delete(ctx, d, id)
	if err != nil {
		// 竞态：检查到删除之间插入了新依赖行，被外键拦下
		if database.IsForeignKeyViolation(err) {
			e := errs.Conflict("cannot delete: dependent rows reference this row")
			e.Payload = &DeletionReport{Blocked: true}
			return nil, e
		}
		return nil, errs.Internal("delete failed", err)
	}
	if affected == 0 {
		return nil, errs.NotFound("%s %d not found", entity, id)
	}

	s.log.Info("guarded delete ok", zap.String("entity", entity), zap.Int64("id", id))
	return &DeletionReport{Blocked: false, Row: row}, nil
}
