package http

import (
	"net/http"
	"strconv"

	"github.com/dkeye/LiveRoom/internal/auth"
	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// issueToken is the demo login: any existing user id gets a token and a
// cookie session.
func (h *api) issueToken(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		badRequest(c, "missing userId")
		return
	}
	uid := domain.UserID(req.UserID)
	u, err := h.o.Users.Get(c.Request.Context(), uid)
	if err != nil {
		fail(c, err)
		return
	}
	token, exp, err := h.authn.Issue(uid)
	if err != nil {
		fail(c, err)
		return
	}
	if err := auth.SaveSession(c, uid); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("user", string(uid)).Msg("session save")
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "expiresAt": exp, "user": u})
}

func (h *api) listUsers(c *gin.Context) {
	users, err := h.o.Users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// createUser opens an empty account. Diamonds are only bought through the
// authenticated recharge route.
func (h *api) createUser(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Diamonds int64  `json:"diamonds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.Diamonds != 0 {
		badRequest(c, "diamonds must be bought via recharge")
		return
	}
	u, err := h.o.RegisterUser(c.Request.Context(), req.Username, 0)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": u})
}

func (h *api) getUser(c *gin.Context) {
	viewer, _ := auth.GetUserID(c)
	p, err := h.o.Profile(c.Request.Context(), viewer, domain.UserID(c.Param("id")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *api) deleteUser(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	if err := h.o.DeleteUser(c.Request.Context(), actor, domain.UserID(c.Param("id"))); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *api) toggleFollow(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req struct {
		StreamID string `json:"streamId"`
	}
	// The body is optional.
	_ = c.ShouldBindJSON(&req)
	res, err := h.o.ToggleFollow(c.Request.Context(), actor, domain.UserID(c.Param("id")), domain.RoomID(req.StreamID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"following":       res.Following,
		"updatedFollower": res.Follower,
		"updatedFollowed": res.Followed,
	})
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (h *api) recharge(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	u, err := h.o.Recharge(c.Request.Context(), actor, domain.UserID(c.Param("id")), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *api) withdraw(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	u, cash, err := h.o.Withdraw(c.Request.Context(), actor, domain.UserID(c.Param("id")), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u, "cash": cash})
}

func (h *api) transactions(c *gin.Context) {
	actor, _ := auth.GetUserID(c)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		badRequest(c, "invalid limit")
		return
	}
	recs, err := h.o.Transactions(c.Request.Context(), actor, domain.UserID(c.Param("id")), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *api) listGifts(c *gin.Context) {
	c.JSON(http.StatusOK, h.o.Catalog.List())
}
