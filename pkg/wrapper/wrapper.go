package wrapper

import "net/http"

type JSONResult struct {
	Code    int         `json:"-"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func ResponseSuccess(httpCode int, data interface{}) JSONResult {
	return JSONResult{
		Code:    httpCode,
		Success: true,
		Message: "Success",
		Data:    data,
	}
}

func ResponseCreated(data interface{}) JSONResult {
	return ResponseSuccess(http.StatusCreated, data)
}

// ResponseNotModified has no body; handlers send the status only.
func ResponseNotModified() JSONResult {
	return JSONResult{Code: http.StatusNotModified, Success: true}
}

func ResponseFailed(httpCode int, message string, data interface{}) JSONResult {
	return JSONResult{
		Code:    httpCode,
		Success: false,
		Message: message,
		Data:    data,
	}
}
