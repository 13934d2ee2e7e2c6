package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/LiveRoom/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrRoomNotFound, http.StatusNotFound},
	{domain.ErrGiftNotFound, http.StatusNotFound},
	{domain.ErrNoBattle, http.StatusNotFound},
	{domain.ErrInsufficientFunds, http.StatusBadRequest},
	{domain.ErrInsufficientEarnings, http.StatusBadRequest},
	{domain.ErrInvalidAmount, http.StatusBadRequest},
	{domain.ErrInvalidQuantity, http.StatusBadRequest},
	{domain.ErrUsernameEmpty, http.StatusBadRequest},
	{domain.ErrUsernameTooLong, http.StatusBadRequest},
	{domain.ErrSelfFollow, http.StatusBadRequest},
	{domain.ErrSameRoom, http.StatusBadRequest},
	{domain.ErrInvalidSide, http.StatusBadRequest},
	{domain.ErrEmptyMessage, http.StatusBadRequest},
	{domain.ErrJoinDenied, http.StatusForbidden},
	{domain.ErrUserExists, http.StatusConflict},
	{domain.ErrBattleActive, http.StatusConflict},
	{domain.ErrNotInRoom, http.StatusConflict},
	{domain.ErrConcurrencyConflict, http.StatusConflict},
	{domain.ErrRateLimited, http.StatusTooManyRequests},
}

// fail writes {success:false, error}. Authorization failures never say why.
func fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden"})
		return
	}
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{"success": false, "error": m.err.Error()})
			return
		}
	}
	log.Error().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}
