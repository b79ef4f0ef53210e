// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: user, post, relation, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodePostNotFound     = "POST_NOT_FOUND"
	ErrCodeDuplicateUser    = "DUPLICATE_USER"
	ErrCodeAlreadyFollowing = "ALREADY_FOLLOWING"
	ErrCodeNotFollowing     = "NOT_FOLLOWING"
	ErrCodeAlreadyLiked     = "ALREADY_LIKED"
	ErrCodeNotLiked         = "NOT_LIKED"
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID int64) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %d", userID),
		Category: "user",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(postID int64) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("指定された投稿が見つかりません: %d", postID),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewDuplicateUserError はユーザー名またはメールアドレスが重複している場合のエラーを生成する。
func NewDuplicateUserError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUser,
		Message:  "このユーザー名またはメールアドレスは既に登録されています。",
		Category: "user",
		Action:   "別のユーザー名またはメールアドレスを指定してください。",
	}
}

// NewAlreadyFollowingError は既にフォロー済みの場合のエラーを生成する。
func NewAlreadyFollowingError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyFollowing,
		Message:  "既にフォローしているか、IDが無効です。",
		Category: "relation",
		Action:   "フォロー状態を確認してください。",
	}
}

// NewNotFollowingError はフォロー関係が存在しない場合のエラーを生成する。
func NewNotFollowingError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFollowing,
		Message:  "フォロー関係が存在しません。",
		Category: "relation",
		Action:   "フォロー状態を確認してください。",
	}
}

// NewAlreadyLikedError は既にいいね済みの場合のエラーを生成する。
func NewAlreadyLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyLiked,
		Message:  "既にいいねしているか、IDが無効です。",
		Category: "relation",
		Action:   "いいねの状態を確認してください。",
	}
}

// NewNotLikedError はいいねが存在しない場合のエラーを生成する。
func NewNotLikedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotLiked,
		Message:  "いいねが存在しません。",
		Category: "relation",
		Action:   "いいねの状態を確認してください。",
	}
}

// NewInvalidIDError はパスパラメータのIDが正の整数でない場合のエラーを生成する。
func NewInvalidIDError(param, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidID,
		Message:  fmt.Sprintf("無効なIDです: %s=%q", param, value),
		Category: "validation",
		Action:   "IDには1以上の整数を指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析に失敗した場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewRateLimitError はレート制限を超えた場合のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
