package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 已创建.
	StatusCreated = 201
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusConflict - 409: 资源冲突.
	StatusConflict = 409
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrForbidden - 403: 角色权限不足.
	ErrForbidden
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户名或密码错误.
	ErrUserPasswordIncorrect
)

// 住户/户号相关错误码 (103xxx).
const (
	// ErrResidentNotFound - 404: 居民不存在.
	ErrResidentNotFound int = iota + 103000
	// ErrResidentAlreadyExist - 400: 居民已存在.
	ErrResidentAlreadyExist
	// ErrHouseholdNotFound - 404: 户号不存在.
	ErrHouseholdNotFound
	// ErrHouseholdAlreadyExist - 400: 户号已存在.
	ErrHouseholdAlreadyExist
	// ErrHouseholdInUse - 409: 户号仍有居民或账单.
	ErrHouseholdInUse
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 月费账单相关错误码 (106xxx).
const (
	// ErrInvalidPeriod - 400: 账期格式错误.
	ErrInvalidPeriod int = iota + 106000
	// ErrGenerationInProgress - 409: 同一账期正在生成.
	ErrGenerationInProgress
	// ErrBillingFailed - 500: 账单存储失败.
	ErrBillingFailed
	// ErrTariffInvalid - 400: 费率规则无效.
	ErrTariffInvalid
	// ErrTariffNotFound - 404: 费率规则不存在.
	ErrTariffNotFound
	// ErrTariffInUse - 409: 费率规则已被账单引用.
	ErrTariffInUse
)

// 现金账相关错误码 (107xxx).
const (
	// ErrCashInvalid - 400: 现金记录无效.
	ErrCashInvalid int = iota + 107000
	// ErrCashNotFound - 404: 现金记录不存在.
	ErrCashNotFound
)

// 迁移相关错误码 (109xxx).
const (
	// ErrMigrationFailed - 500: 迁移失败.
	ErrMigrationFailed int = iota + 109000
	// ErrConnectionFailed - 500: 连接失败.
	ErrConnectionFailed
)
