package httpapi

import "github.com/dmitrijs2005/chatrelay/internal/server/shared/db"

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type MessageRequest struct {
	Message string `json:"message" validate:"required"`
}

type MessageResponse struct {
	Response string `json:"response"`
}

type DeleteResponse struct {
	Deleted int64  `json:"deleted"`
	Archive string `json:"archive,omitempty"`
}

type HealthResponse struct {
	Status  string  `json:"status"`
	Storage db.Mode `json:"storage"`
	Reply   string  `json:"reply,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
