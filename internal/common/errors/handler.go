package errors

import "fmt"

// ErrorHandler turns errors into the strings shown to end users and logs them
// with their category.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// ToolFailure renders a recovered adapter error as "<prefix>：<reason>".
func (h *ErrorHandler) ToolFailure(tool, prefix string, err error) string {
	stdErr := AsStandardError(err)
	h.logError(tool, stdErr)

	reason := stdErr.Message
	if stdErr.Code == ErrCodeInternal {
		reason = stdErr.Details
	}
	return fmt.Sprintf("%s：%s", prefix, reason)
}

// SystemError renders an unexpected error as "系统错误: <description>".
func (h *ErrorHandler) SystemError(component string, err error) string {
	stdErr := AsStandardError(err)
	h.logError(component, stdErr)

	desc := stdErr.Details
	if desc == "" {
		desc = stdErr.Message
	}
	return "系统错误: " + desc
}

// Record logs err under component without rendering it.
func (h *ErrorHandler) Record(component string, err error) *StandardError {
	stdErr := AsStandardError(err)
	h.logError(component, stdErr)
	return stdErr
}

func (h *ErrorHandler) logError(component string, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	h.logger.Error("request failed", map[string]interface{}{
		"component":     component,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})
}
