package service

// Identity 是一次成功登录后得到的身份上下文，必须显式传入每个问答操作。
type Identity struct {
	SessionID     string
	UserID        uint
	StudentNumber string
}

// IsZero 判断身份是否为空。
func (i Identity) IsZero() bool {
	return i.UserID == 0 || i.SessionID == ""
}

// requireIdentity 是每个问答操作开头的登录检查。
func requireIdentity(id Identity) error {
	if id.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}
