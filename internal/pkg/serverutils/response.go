package serverutils

// BaseResponse is the envelope of every API answer. Errors and Counts are
// only set by the verify endpoints.
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	Counts  any    `json:"counts,omitempty"`
}

func SuccessResponse[T any](message string, data T) *BaseResponse[T] {
	return &BaseResponse[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) *BaseResponse[any] {
	return &BaseResponse[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// ReportResponse answers a verify or create request with the validation
// errors and counts next to the data.
func ReportResponse[T any](code int, message string, data T, errors any, counts any) *BaseResponse[T] {
	return &BaseResponse[T]{
		Success: code < 400,
		Code:    code,
		Message: message,
		Data:    data,
		Errors:  errors,
		Counts:  counts,
	}
}
