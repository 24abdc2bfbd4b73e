package application

import (
	"errors"
	"fmt"
)

// Kind classifies application errors for the transport layer.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindAuthz
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthz:
		return "authz"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is an expected failure whose Message is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func ValidationError(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func AuthError(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func AuthzError(msg string) *Error      { return &Error{Kind: KindAuthz, Message: msg} }
func NotFoundError(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func ConflictError(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the kind of err, or 0 when err is not an application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// Client-facing messages.
const (
	MsgFieldsRequired      = "所有欄位都是必填！"
	MsgUserDoesNotExist    = "User doesn't exist!"
	MsgAccountNotExist     = "帳號不存在"
	MsgWrongPassword       = "密碼錯誤！"
	MsgPasswordMismatch    = "密碼與密碼確認不相同！"
	MsgPasswordTooLong     = "密碼不能超過 72 bytes！"
	MsgEmailRegistered     = "email 已重複註冊！"
	MsgAccountRegistered   = "account 已重複註冊！"
	MsgUserNotFound        = "找不到使用者！"
	MsgNoPermission        = "無權限更改此使用者！"
	MsgAccountTaken        = "account與其他使用者重複！"
	MsgEmailTaken          = "email與其他使用者重複！"
	MsgNameRequired        = "name是必填！"
	MsgFieldEmpty          = "account、name、email 不可為空白！"
	MsgNameTooLong         = "name 不能超過 50 字！"
	MsgIntroductionTooLong = "introduction 不能超過 160 字！"
	MsgImageType           = "圖片格式只支援 jpeg、png、gif、webp！"
	MsgImageTooLarge       = "圖片大小不能超過 5MB！"
	MsgSelfFollow          = "不能追蹤自己！"
	MsgAlreadyFollowing    = "已追蹤此使用者！"
	MsgNotFollowing        = "尚未追蹤此使用者！"
	MsgQueryRequired       = "搜尋關鍵字是必填！"
)
