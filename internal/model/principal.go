package model

// Principal 已驗證的呼叫者，由 middleware 建立後明確傳給 service
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsAuthenticated() bool {
	return p.UserID != ""
}
