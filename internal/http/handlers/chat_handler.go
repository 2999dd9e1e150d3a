// README: Chat handler; follow-up questions against a generated itinerary.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/chat"
	"wayfarer/internal/logging"
	"wayfarer/internal/markdown"
)

type ChatHandler struct {
	chat     *chat.Service
	renderer *markdown.Renderer
}

func NewChatHandler(svc *chat.Service, renderer *markdown.Renderer) *ChatHandler {
	return &ChatHandler{chat: svc, renderer: renderer}
}

type askReq struct {
	Question string `json:"question"`
}

type askResp struct {
	Session    *chat.Session `json:"session"`
	Answer     string        `json:"answer"`
	AnswerHTML string        `json:"answer_html"`
}

func (h *ChatHandler) Get(c *gin.Context) {
	sess, err := h.chat.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeChatError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, sess)
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request")
		return
	}

	ctx := c.Request.Context()
	sess, err := h.chat.Ask(ctx, c.Param("id"), req.Question)
	if err != nil {
		if sess != nil {
			// The question is recorded; the answer failed.
			writeJSON(c, http.StatusBadGateway, errorResponse{Error: chatFailureNotice, Session: sess})
			return
		}
		if !errors.Is(err, chat.ErrAwaiting) && !errors.Is(err, chat.ErrSessionNotFound) && !errors.Is(err, chat.ErrEmptyQuestion) {
			logging.FromContext(ctx).WithError(err).Error("chat round")
		}
		writeChatError(c, err)
		return
	}

	answer := sess.Turns[len(sess.Turns)-1].Content
	html, err := h.renderer.Render(answer)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("render answer")
	}
	writeJSON(c, http.StatusOK, askResp{Session: sess, Answer: answer, AnswerHTML: html})
}
