package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高，请稍后再试",
	ErrForbidden:       "权限不足",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户已存在",
	ErrUserPasswordIncorrect: "用户名或密码错误",

	// 住户/户号相关错误码
	ErrResidentNotFound:      "居民不存在",
	ErrResidentAlreadyExist:  "居民已存在",
	ErrHouseholdNotFound:     "户号不存在",
	ErrHouseholdAlreadyExist: "该RT下已存在相同门牌",
	ErrHouseholdInUse:        "户号下仍有居民或账单",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",

	// 月费账单相关错误码
	ErrInvalidPeriod:        "账期格式应为 YYYY-MM",
	ErrGenerationInProgress: "该账期的账单正在生成，请稍后再试",
	ErrBillingFailed:        "账单存储失败",
	ErrTariffInvalid:        "费率规则无效",
	ErrTariffNotFound:       "费率规则不存在",
	ErrTariffInUse:          "费率规则已被账单引用",

	// 现金账相关错误码
	ErrCashInvalid:  "现金记录无效",
	ErrCashNotFound: "现金记录不存在",

	// 迁移相关错误码
	ErrMigrationFailed:  "迁移失败",
	ErrConnectionFailed: "连接失败",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,
	ErrForbidden:       StatusForbidden,

	// 用户相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	// 住户/户号相关错误码
	ErrResidentNotFound:      StatusNotFound,
	ErrResidentAlreadyExist:  StatusBadRequest,
	ErrHouseholdNotFound:     StatusNotFound,
	ErrHouseholdAlreadyExist: StatusBadRequest,
	ErrHouseholdInUse:        StatusConflict,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 月费账单相关错误码
	ErrInvalidPeriod:        StatusBadRequest,
	ErrGenerationInProgress: StatusConflict,
	ErrBillingFailed:        StatusInternalServerError,
	ErrTariffInvalid:        StatusBadRequest,
	ErrTariffNotFound:       StatusNotFound,
	ErrTariffInUse:          StatusConflict,

	// 现金账相关错误码
	ErrCashInvalid:  StatusBadRequest,
	ErrCashNotFound: StatusNotFound,

	// 迁移相关错误码
	ErrMigrationFailed:  StatusInternalServerError,
	ErrConnectionFailed: StatusInternalServerError,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
