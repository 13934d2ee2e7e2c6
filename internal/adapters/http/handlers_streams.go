package http

import (
	"net/http"

	"github.com/dkeye/LiveRoom/internal/auth"
	"github.com/dkeye/LiveRoom/internal/core"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/gin-gonic/gin"
)

func roomParam(c *gin.Context) domain.RoomID {
	return domain.RoomID(c.Param("roomId"))
}

func (h *api) listStreams(c *gin.Context) {
	c.JSON(http.StatusOK, h.o.Rooms.List())
}

func (h *api) startStream(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&req)
	room, err := h.o.StartStream(c.Request.Context(), actor, req.Title)
	if err != nil {
		fail(c, err)
		return
	}
	r := room.Room()
	c.JSON(http.StatusCreated, core.RoomInfo{
		ID:          r.ID,
		HostID:      r.HostID,
		Title:       r.Title,
		StartedAt:   r.StartedAt,
		MemberCount: room.MemberCount(),
	})
}

func (h *api) endStream(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	if err := h.o.EndStream(actor, roomParam(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *api) joinStream(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	if err := h.o.Join(c.Request.Context(), actor, roomParam(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) leaveStream(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	if err := h.o.Leave(actor, roomParam(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type targetRequest struct {
	TargetID string `json:"targetId"`
}

func (h *api) kick(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetID == "" {
		badRequest(c, "missing targetId")
		return
	}
	if err := h.o.Kick(actor, domain.UserID(req.TargetID), roomParam(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) promote(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetID == "" {
		badRequest(c, "missing targetId")
		return
	}
	if err := h.o.PromoteModerator(actor, domain.UserID(req.TargetID), roomParam(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) sendGift(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		FromUserID string `json:"fromUserId"`
		GiftName   string `json:"giftName"`
		Amount     int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.FromUserID != "" && domain.UserID(req.FromUserID) != actor {
		fail(c, domain.ErrUnauthorized)
		return
	}
	res, err := h.o.SendGift(c.Request.Context(), actor, roomParam(c), req.GiftName, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"updatedSender":   res.Sender,
		"updatedReceiver": res.Receiver,
	})
}

func (h *api) chat(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if err := h.o.SendChat(actor, roomParam(c), req.Text); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *api) onlineUsers(c *gin.Context) {
	ranked, err := h.o.OnlineUsers(c.Request.Context(), roomParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

func (h *api) roomGifts(c *gin.Context) {
	agg, err := h.o.RoomGifts(roomParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, agg)
}

func (h *api) giftHistory(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	recs, err := h.o.GiftHistory(actor, roomParam(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}
