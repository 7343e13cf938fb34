package model

// 認証側サービスが発行したトークンに入っているロール。
// このコアはトークンの検証結果（user_id, role）だけを信用する。
type Role string

const (
	RoleUser     Role = "USER"
	RoleMerchant Role = "MERCHANT"
	RoleAdmin    Role = "ADMIN"
)
