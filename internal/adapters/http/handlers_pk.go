package http

import (
	"net/http"

	"github.com/dkeye/LiveRoom/internal/auth"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/gin-gonic/gin"
)

func (h *api) startPK(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		StreamID   string `json:"streamId"`
		OpponentID string `json:"opponentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.StreamID == "" || req.OpponentID == "" {
		badRequest(c, "missing streamId or opponentId")
		return
	}
	if err := h.o.StartPK(actor, domain.RoomID(req.StreamID), domain.RoomID(req.OpponentID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) endPK(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		StreamID string `json:"streamId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.StreamID == "" {
		badRequest(c, "missing streamId")
		return
	}
	if err := h.o.EndPK(actor, domain.RoomID(req.StreamID)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) heart(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		RoomID string `json:"roomId"`
		Team   string `json:"team"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomID == "" {
		badRequest(c, "missing roomId")
		return
	}
	if err := h.o.Heart(actor, domain.RoomID(req.RoomID), req.Team); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) pkView(c *gin.Context) {
	v, err := h.o.PKView(roomParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
