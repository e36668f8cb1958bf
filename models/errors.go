// forum/models/errors.go
package models

import "errors"

// Code identifies one of the engine's fixed failure kinds. Every mutating
// operation either succeeds or fails with exactly one of these.
type Code string

const (
	CodeTimeout     Code = "TIMEOUT"
	CodeNoMatch     Code = "NOMATCH"
	CodeBadUser     Code = "BADUSER"
	CodeBadPass     Code = "BADPASS"
	CodeWrongPass   Code = "WRONGPASS"
	CodeBadName     Code = "BADNAME"
	CodeBadContent  Code = "BADCONTENT"
	CodeNoUser      Code = "NOUSER"
	CodeNoBoard     Code = "NOBOARD"
	CodeNoThread    Code = "NOTHREAD"
	CodeNoPost      Code = "NOPOST"
	CodeNoImage     Code = "NOIMAGE"
	CodeUserTaken   Code = "USERTAKEN"
	CodeBoardTaken  Code = "BOARDTAKEN"
	CodeThreadTaken Code = "THREADTAKEN"
	CodeBadPerm     Code = "BADPERM"
	CodeBadReq      Code = "BADREQ"
)

// Error is the engine's recoverable error type. Anything else coming out of
// the engine is an internal failure (database, filesystem) wrapped with %w.
type Error struct {
	Code Code
}

func (e *Error) Error() string { return string(e.Code) }

var (
	ErrTimeout     = &Error{CodeTimeout}
	ErrNoMatch     = &Error{CodeNoMatch}
	ErrBadUser     = &Error{CodeBadUser}
	ErrBadPass     = &Error{CodeBadPass}
	ErrWrongPass   = &Error{CodeWrongPass}
	ErrBadName     = &Error{CodeBadName}
	ErrBadContent  = &Error{CodeBadContent}
	ErrNoUser      = &Error{CodeNoUser}
	ErrNoBoard     = &Error{CodeNoBoard}
	ErrNoThread    = &Error{CodeNoThread}
	ErrNoPost      = &Error{CodeNoPost}
	ErrNoImage     = &Error{CodeNoImage}
	ErrUserTaken   = &Error{CodeUserTaken}
	ErrBoardTaken  = &Error{CodeBoardTaken}
	ErrThreadTaken = &Error{CodeThreadTaken}
	ErrBadPerm     = &Error{CodeBadPerm}
	ErrBadReq      = &Error{CodeBadReq}
)

// CodeOf extracts the engine code from an error chain. The second return is
// false for internal errors that carry no code.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Messages maps engine codes to user-facing text. The presentation layer is
// expected to look errors up here rather than show raw codes.
var Messages = map[Code]string{
	CodeTimeout:     "You're doing this too much. Please try again later",
	CodeNoMatch:     "Passwords do not match",
	CodeBadUser:     "Invalid Username",
	CodeBadPass:     "Invalid Password",
	CodeWrongPass:   "Invalid Password",
	CodeBadName:     "Invalid name",
	CodeBadContent:  "Post content cannot be empty",
	CodeNoUser:      "User does not exist",
	CodeNoBoard:     "Board does not exist",
	CodeNoThread:    "Thread does not exist",
	CodeNoPost:      "Post does not exist",
	CodeNoImage:     "Image does not exist",
	CodeUserTaken:   "Username already taken",
	CodeBoardTaken:  "A board with this name already exists",
	CodeThreadTaken: "A thread with this name already exists",
	CodeBadPerm:     "You're not allowed to do that",
	CodeBadReq:      "Bad request",
}
