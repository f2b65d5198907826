package translate

import (
	"errors"
	"strings"
)

var (
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrTranslationFailed = errors.New("translation failed")
)

// Error is what the user sees: a fixed localized message. The cause is kept
// for logging only.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Classify maps any request/response failure to one of the two user-facing kinds.
func Classify(err error, lang Language) error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if IsTooLarge(err) {
		return &Error{Kind: ErrPayloadTooLarge, Message: Message(lang, MsgPayloadTooLarge), Err: err}
	}
	return Fail(err, lang)
}

// Fail classifies err as a translation failure regardless of its text.
func Fail(err error, lang Language) error {
	return &Error{Kind: ErrTranslationFailed, Message: Message(lang, MsgTranslationFailed), Err: err}
}

type statusCoder interface {
	StatusCode() int
}

func IsTooLarge(err error) bool {
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() == 413 {
		return true
	}

	text := strings.ToLower(err.Error())
	return strings.Contains(text, "413") || strings.Contains(text, "too large")
}

// UserMessage returns the message to show for err, hiding unclassified detail.
func UserMessage(err error, lang Language) string {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Message
	}
	return Message(lang, MsgTranslationFailed)
}
