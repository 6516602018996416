package services

import "errors"

// 服务层错误分类，控制器据此映射错误码与HTTP状态码
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrPersistence          = errors.New("persistence error")
	ErrGenerationInProgress = errors.New("bill generation already running for this period")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExist   = errors.New("username already exists")

	ErrHouseholdNotFound     = errors.New("household not found")
	ErrHouseholdAlreadyExist = errors.New("household address already registered in this RT")
	ErrHouseholdInUse        = errors.New("household still has bills or residents")
	ErrRTNotFound            = errors.New("rt not found")

	ErrResidentNotFound = errors.New("resident not found")
	ErrTariffNotFound   = errors.New("tariff rule not found")
	ErrTariffInUse      = errors.New("tariff rule is referenced by bills")
	ErrCashNotFound     = errors.New("cash transaction not found")
)
