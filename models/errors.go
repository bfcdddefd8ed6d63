package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotAMember           = errors.New("not a member of this room")
	ErrRoomNotFound         = errors.New("room not found")
	ErrSlowConsumerDropped  = errors.New("subscriber dropped: delivery queue full")
	ErrStoreUnavailable     = errors.New("message store unavailable")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrRateLimited          = errors.New("rate limit exceeded")
)

// 推播錯誤碼
const (
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeNotAMember           = "NOT_A_MEMBER"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodeSlowConsumerDropped  = "SLOW_CONSUMER_DROPPED"
	CodeUnavailable          = "UNAVAILABLE"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrAuthenticationFailed, CodeAuthenticationFailed},
	{ErrNotAMember, CodeNotAMember},
	{ErrRoomNotFound, CodeRoomNotFound},
	{ErrSlowConsumerDropped, CodeSlowConsumerDropped},
	{ErrStoreUnavailable, CodeUnavailable},
	{ErrInvalidRequest, CodeInvalidRequest},
	{ErrRateLimited, CodeRateLimited},
}

// ErrorCode 將錯誤對應到推播錯誤碼，未知錯誤回傳 INTERNAL
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}

// Retryable 表示呼叫端可以稍後重試
func Retryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrRateLimited)
}

// NewErrorBody 建立推播用的錯誤內容
func NewErrorBody(err error) *ErrorBody {
	return &ErrorBody{
		Code:      ErrorCode(err),
		Message:   err.Error(),
		Retryable: Retryable(err),
	}
}

// ErrorFromCode 將推播錯誤碼還原為對應的錯誤，供用戶端以 errors.Is 判斷
func ErrorFromCode(code, message string) error {
	for _, ec := range errorCodes {
		if ec.code == code {
			if message == "" || message == ec.err.Error() {
				return ec.err
			}
			if rest, ok := strings.CutPrefix(message, ec.err.Error()); ok {
				return fmt.Errorf("%w%s", ec.err, rest)
			}
			return fmt.Errorf("%w: %s", ec.err, message)
		}
	}
	return fmt.Errorf("%s: %s", code, message)
}
