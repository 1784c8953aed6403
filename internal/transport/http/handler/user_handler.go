package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-catalog-api/internal/domain/errs"
	"go-catalog-api/internal/repo"
	"go-catalog-api/internal/transport/http/response"
)

// UserHandler 管理端用户管理（仅 admin）
type UserHandler struct {
	Users *repo.UserRepo
	Log   *zap.Logger
}

func (h *UserHandler) List(c *gin.Context) {
	page, limit, offset, search := pageQuery(c)
	f := repo.UserFilter{Search: search, Offset: offset, Limit: limit}
	if v := c.Query("role_id"); v != "" {
		f.RoleID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("active"); v != "" {
		active, _ := strconv.ParseBool(v)
		f.Active = &active
	}

	users, total, err := h.Users.List(c.Request.Context(), f)
	if err != nil {
		response.Err(c, h.Log, errs.Internal("list users failed", err))
		return
	}
	response.OK(c, "OK", response.NewPage(users, total, page, limit))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	u, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		response.Err(c, h.Log, errs.Internal("get user failed", err))
		return
	}
	if u == nil {
		response.Err(c, h.Log, errs.NotFound("user %d not found", id))
		return
	}
	response.OK(c, "OK", u)
}

type userPatchIn struct {
	Active *bool  `json:"active"`
	RoleID *int64 `json:"role_id"`
}

// Patch 只动 active / role_id 两个字段（启停用、调角色）
func (h *UserHandler) Patch(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Err(c, h.Log, err)
		return
	}
	var in userPatchIn
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Err(c, h.Log, errs.Validation("invalid payload: %v", err))
		return
	}
	if in.Active == nil && in.RoleID == nil {
		response.Err(c, h.Log, errs.Validation("nothing to update"))
		return
	}

	u, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		response.Err(c, h.Log, errs.Internal("get user failed", err))
		return
	}
	if u == nil {
		response.Err(c, h.Log, errs.NotFound("user %d not found", id))
		return
	}
	if in.Active != nil {
		u.Active = *in.Active
	}
	if in.RoleID != nil {
		u.RoleID = *in.RoleID
		u.Role = nil // 角色改了，预加载的旧值不再可信
	}
	if err := h.Users.Update(c.Request.Context(), u); err != nil {
		response.Err(c, h.Log, errs.Internal("update user failed", err))
		return
	}
	response.OK(c, "user updated", u)
}
