// Package model はドメインモデルを定義する。
package model

// User はサービスに登録されたユーザーを表す。
// 作成後に更新・削除されることはない。
type User struct {
	ID          int64
	Username    string // 一意
	DisplayName string
	Email       string // 一意
}
