package dto

import (
	"time"
)

type CreateSessionResponse struct {
	Id string `json:"id"`
}

type GetAllSessionsResponse struct {
	Id         string    `json:"id"`
	Topic      string    `json:"topic,omitempty"`
	Turns      int       `json:"turns"`
	LastActive time.Time `json:"last_active"`
}

type GetChatHistoryResponse struct {
	Role string `json:"role"`
	Chat string `json:"chat"`
}

type SendChatRequest struct {
	ChatSessionId string `json:"chat_session_id" validate:"required,uuid4"`
	Chat          string `json:"chat" validate:"required,max=4000"`
}

type SendChatResponse struct {
	ChatSessionId string   `json:"chat_session_id"`
	Reply         string   `json:"reply"`
	Route         string   `json:"route"`
	Quality       float64  `json:"quality"`
	Sources       []string `json:"sources,omitempty"`
	Disclaimer    string   `json:"disclaimer,omitempty"`
}

type DeleteSessionRequest struct {
	ChatSessionId string `json:"chat_session_id" validate:"required,uuid4"`
}
