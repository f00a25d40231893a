package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/relaydns/sentinel/internal/api/models"
	"github.com/relaydns/sentinel/internal/config"
)

// GetConfig godoc
// @Summary Dump the read-only config registry
// @Description Returns every configuration item as a flat, typed list; secret-bearing values are redacted
// @Tags config
// @Produce json
// @Success 200 {object} models.ConfigResponse
// @Security SIDAuth
// @Router /config [get]
func (h *Handler) GetConfig(c *gin.Context) {
	items := h.registry.Items()
	resp := models.ConfigResponse{Items: make([]models.ConfigItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, models.ConfigItemResponse{
			Key:     item.Key,
			Help:    item.Help,
			Type:    itemTypeString(item.Type),
			Default: item.Default,
			Value:   item.Value,
			Restart: item.Flags&config.FlagRestart != 0,
			Secret:  item.Flags&config.FlagSecret != 0,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func itemTypeString(t config.ItemType) string {
	switch t {
	case config.TypeBool:
		return "bool"
	case config.TypeInt:
		return "int"
	case config.TypeEnum:
		return "enum"
	default:
		return "string"
	}
}
