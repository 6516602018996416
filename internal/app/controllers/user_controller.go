package controllers

import (
	"strconv"

	"rwportal-http-service/internal/app/middleware"
	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/domain/services"
	"rwportal-http-service/internal/domain/services/container"
	"rwportal-http-service/internal/error/code"
	"rwportal-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// UserController 处理账号管理请求
type UserController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewUserController 创建账号控制器
func NewUserController(ctx *gin.Context, container *container.ServiceContainer) *UserController {
	return &UserController{
		Ctx:       ctx,
		Container: container,
	}
}

// UserRequest 创建账号请求
type UserRequest struct {
	Username string      `json:"username" binding:"required" example:"bendahara"`
	Password string      `json:"password" binding:"required,min=6" example:"rahasia123"`
	Name     string      `json:"name" example:"Siti"`
	Phone    string      `json:"phone" example:"081234567890"`
	Role     models.Role `json:"role" binding:"required" example:"bendahara_rw"`
	RTID     *uint       `json:"rt_id" example:"1"`
}

// HandleUserFunc 返回一个处理账号请求的Gin处理函数
func HandleUserFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewUserController(ctx, container)
		switch method {
		case "getUsers":
			controller.GetUsers()
		case "getMe":
			controller.GetMe()
		case "createUser":
			controller.CreateUser()
		case "deleteUser":
			controller.DeleteUser()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

func (c *UserController) service() services.InterfaceUserService {
	return c.Container.GetService("user").(services.InterfaceUserService)
}

// GetUsers 账号列表
// @Summary      账号列表
// @Tags         User
// @Produce      json
// @Param        page query int false "页码，默认为1"
// @Param        page_size query int false "每页条数，默认为20"
// @Param        search query string false "按用户名或姓名搜索"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users [get]
func (c *UserController) GetUsers() {
	page, _ := strconv.Atoi(c.Ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Ctx.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := c.service().GetAllUsers(c.Ctx.Request.Context(), page, pageSize, c.Ctx.Query("search"))
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, gin.H{
		"items":      users,
		"pagination": models.NewPaginationResult(total, page, pageSize),
	})
}

// GetMe 当前登录账号
// @Summary      当前账号
// @Tags         User
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse{data=models.User}
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
func (c *UserController) GetMe() {
	caller := middleware.GetCaller(c.Ctx)
	if caller == nil {
		response.Unauthorized(c.Ctx, "Authentication required")
		return
	}
	user, err := c.service().GetUserByID(c.Ctx.Request.Context(), caller.UserID)
	if err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, user)
}

// CreateUser 创建账号
// @Summary      创建账号
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request body UserRequest true "账号信息"
// @Security     BearerAuth
// @Success      201  {object}  SuccessResponse{data=models.User}
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users [post]
func (c *UserController) CreateUser() {
	var req UserRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "无效的请求参数: "+err.Error(), nil)
		return
	}
	user := &models.User{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		RTID:     req.RTID,
		Status:   "active",
	}
	if err := c.service().CreateUser(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), user); err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Created(c.Ctx, user)
}

// DeleteUser 删除账号
// @Summary      删除账号
// @Tags         User
// @Produce      json
// @Param        id path int true "账号ID"
// @Security     BearerAuth
// @Success      200  {object}  SuccessResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (c *UserController) DeleteUser() {
	id, ok := parseID(c.Ctx, "id")
	if !ok {
		return
	}
	if err := c.service().DeleteUser(c.Ctx.Request.Context(), middleware.GetCaller(c.Ctx), id); err != nil {
		handleServiceError(c.Ctx, err, code.ErrValidation, code.ErrDatabase)
		return
	}
	middleware.PurgeCache()
	response.Success(c.Ctx, nil)
}
