package dto

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	WarehouseID string `json:"warehouse_id,omitempty"`
}

// LoginRequest entrada para login por nombre de usuario.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest alta de operador (solo admin). Role vacío = operador.
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,max=50"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"max=100"`
	Role        string `json:"role" validate:"omitempty,oneof=admin operador"`
	WarehouseID string `json:"warehouse_id"`
}
