package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-catalog-api/internal/core/database"
	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/repo"
)

// MaxReorderBatch 单次重排上限，挡住病态大请求
const MaxReorderBatch = 100

// OrderItem 请求里的一条重排项。Index 用指针区分「缺字段」和 0。
type OrderItem struct {
	ID    int64  `json:"id"`
	Index *int64 `json:"index"`
}

// ReorderService 批量改写 order_key（前台展示顺序）。
// 校验从便宜到贵逐级做，第一个失败即返回；存在性/占用检查和
// 写入同处一个事务，表上的唯一约束是最终兜底。
type ReorderService struct {
	repo *repo.ReorderRepo
	log  *zap.Logger
}

func NewReorderService(r *repo.ReorderRepo, log *zap.Logger) *ReorderService {
	return &ReorderService{repo: r, log: log}
}

func (s *ReorderService) Reindex(ctx context.Context, entity string, items []OrderItem) ([]repo.OrderedRow, error) {
	t, ok := s.repo.Resolve(entity)
	if !ok {
		return nil, errs.NotFound("unknown orderable entity %q", entity)
	}

	pairs, err := validateOrderItems(items)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(pairs))
	keys := make([]int64, len(pairs))
	for i, p := range pairs {
		ids[i] = p.ID
		keys[i] = p.Key
	}

	var rows []repo.OrderedRow
	txErr := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		found, err := s.repo.ExistingIDs(ctx, tx, t, ids)
		if err != nil {
			return errs.Internal("reorder lookup failed", err)
		}
		if len(found) != len(ids) {
			missing := missingIDs(ids, found)
			e := errs.NotFound("ids not found: %s", joinInt64(missing))
			e.Details = int64Strings(missing)
			return e
		}

		held, err := s.repo.HeldOutside(ctx, tx, t, keys, ids)
		if err != nil {
			return errs.Internal("reorder collision check failed", err)
		}
		if len(held) > 0 {
			e := errs.Conflict("index values already in use: %s", joinInt64(held))
			e.Details = int64Strings(held)
			return e
		}

		if err := s.repo.Apply(ctx, tx, t, pairs); err != nil {
			// 和并发重排抢键位输了：落库冲突同样按 Conflict 报
			if database.IsDuplicateKey(err) {
				return errs.Conflict("index values already in use")
			}
			return errs.Internal("reorder write failed", err)
		}

		rows, err = s.repo.Rows(ctx, tx, t, ids)
		if err != nil {
			return errs.Internal("reorder readback failed", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.log.Info("reorder applied",
		zap.String("entity", entity),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

// validateOrderItems 执行请求内部的校验（不碰数据库的那部分）
func validateOrderItems(items []OrderItem) ([]repo.OrderPair, error) {
	if len(items) == 0 {
		return nil, errs.Validation("items must not be empty")
	}
	if len(items) > MaxReorderBatch {
		return nil, errs.Validation("at most %d items per request", MaxReorderBatch)
	}

	pairs := make([]repo.OrderPair, 0, len(items))
	for _, it := range items {
		if it.ID <= 0 {
			return nil, errs.Validation("invalid id: %d", it.ID)
		}
		if it.Index == nil {
			return nil, errs.Validation("missing index for id %d", it.ID)
		}
		if *it.Index < 0 {
			return nil, errs.Validation("negative index for id %d", it.ID)
		}
		pairs = append(pairs, repo.OrderPair{ID: it.ID, Key: *it.Index})
	}

	// 先查完所有 id 再查 index，两类重复同时存在时报 id 那个
	seenID := make(map[int64]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := seenID[p.ID]; dup {
			return nil, errs.Conflict("duplicate id in request: %d", p.ID)
		}
		seenID[p.ID] = struct{}{}
	}
	seenKey := make(map[int64]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := seenKey[p.Key]; dup {
			return nil, errs.Conflict("duplicate index in request: %d", p.Key)
		}
		seenKey[p.Key] = struct{}{}
	}
	return pairs, nil
}

func missingIDs(want, have []int64) []int64 {
	set := make(map[int64]struct{}, len(have))
	for _, id := range have {
		set[id] = struct{}{}
	}
	var out []int64
	for _, id := range want {
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func joinInt64(vs []int64) string {
	return strings.Join(int64Strings(vs), ", ")
}

func int64Strings(vs []int64) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprint(v)
	}
	return out
}
