// Package model はドメインモデルを定義する。
package model

import "time"

// Message はユーザー間の単方向メッセージを表す。
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	Timestamp  time.Time
	Read       bool
}
