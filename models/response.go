package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Error   string           `json:"error,omitempty"`
	Details []FieldViolation `json:"details,omitempty"`
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type CartResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *Cart       `json:"data"`
	Total   interface{} `json:"total"`
}
