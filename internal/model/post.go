// Package model はドメインモデルを定義する。
package model

import "time"

// Post はユーザーが投稿した記事を表す。
// AuthorIDはusers.idを参照するが、参照整合性は強制しない。
type Post struct {
	ID        int64
	Title     string
	Body      string
	AuthorID  int64
	CreatedAt time.Time // 作成時にサーバー側でUTCを設定する
}
