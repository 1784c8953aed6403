package response

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-catalog-api/internal/domain/errs"
)

// Body 统一回包：成功 {success,message,data}，失败 {success:false,message,errors?}
type Body struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Page 分页回包（挂在 data 下）
type Page struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func NewPage(data any, total int64, page, limit int) Page {
	tp := 0
	if limit > 0 {
		tp = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Page{Data: data, Total: total, Page: page, Limit: limit, TotalPages: tp}
}

func OK(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, Body{Success: true, Message: msg, Data: data})
}

func Created(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusCreated, Body{Success: true, Message: msg, Data: data})
}

// StatusOf 错误分类 → HTTP 状态码
func StatusOf(err error) int {
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindConflict:
		// 原接口把占用冲突也按 400 报，沿用
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Err 业务错误出口。内部错误只留日志，文案不往外漏。
func Err(c *gin.Context, log *zap.Logger, err error) {
	status := StatusOf(err)
	body := Body{Success: false, Message: err.Error()}

	if e, ok := errs.AsError(err); ok {
		body.Message = e.Message
		body.Errors = e.Details
		if e.Payload != nil {
			body.Data = e.Payload
		}
	}
	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
		}
		body.Message = "internal server error"
		body.Errors = nil
		body.Data = nil
	}
	c.AbortWithStatusJSON(status, body)
}
