package controllers

import (
	"errors"
	"strconv"

	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"
	Logger "rwportal-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"106000"`
	Message string      `json:"message" example:"账期格式应为 YYYY-MM"`
	Error   string      `json:"error" example:"invalid input: invalid period \"2024-13\""`
	Data    interface{} `json:"data"`
}

// SuccessResponse 表示成功响应
type SuccessResponse struct {
	Code    int         `json:"code" example:"100000"`
	Message string      `json:"message" example:"成功"`
	Data    interface{} `json:"data"`
}

// serviceErrorCodes 服务层错误到错误码的映射，按顺序匹配
var serviceErrorCodes = []struct {
	err  error
	code int
}{
	{services.ErrUnauthenticated, code.ErrTokenInvalid},
	{services.ErrForbidden, code.ErrForbidden},
	{services.ErrGenerationInProgress, code.ErrGenerationInProgress},
	{services.ErrInvalidCredentials, code.ErrUserPasswordIncorrect},
	{services.ErrUserNotFound, code.ErrUserNotFound},
	{services.ErrUserAlreadyExist, code.ErrUserAlreadyExist},
	{services.ErrHouseholdNotFound, code.ErrHouseholdNotFound},
	{services.ErrHouseholdAlreadyExist, code.ErrHouseholdAlreadyExist},
	{services.ErrHouseholdInUse, code.ErrHouseholdInUse},
	{services.ErrRTNotFound, code.ErrRecordNotFound},
	{services.ErrResidentNotFound, code.ErrResidentNotFound},
	{services.ErrTariffNotFound, code.ErrTariffNotFound},
	{services.ErrTariffInUse, code.ErrTariffInUse},
	{services.ErrCashNotFound, code.ErrCashNotFound},
}

// handleServiceError 将服务层错误写为统一的错误响应
// invalidCode 为该接口参数错误时使用的错误码，failCode 为未识别错误使用的错误码
func handleServiceError(c *gin.Context, err error, invalidCode, failCode int) {
	if errors.Is(err, services.ErrInvalidInput) {
		response.FailWithMessage(c, invalidCode, err.Error(), nil)
		return
	}
	for _, m := range serviceErrorCodes {
		if errors.Is(err, m.err) {
			response.FailWithMessage(c, m.code, err.Error(), nil)
			return
		}
	}
	Logger.Error("%s %s 失败: %v", c.Request.Method, c.FullPath(), err)
	response.FailWithMessage(c, failCode, err.Error(), nil)
}

// parseID 解析路径中的ID参数
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.ParamError(c, "无效的ID: "+c.Param(name))
		return 0, false
	}
	return uint(id), true
}
