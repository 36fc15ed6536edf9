package handler

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/jobboard/backend/docs"
	"github.com/jobboard/backend/internal/interfaces/http/dto"
)

// DocsHandler serves the Swagger UI and the OpenAPI document at /swagger/*
type DocsHandler struct {
	BaseHandler
	allowed []netip.Prefix
	serve   gin.HandlerFunc
}

// NewDocsHandler restricts the docs to allowedIPs, given as addresses or
// CIDR ranges. An empty list allows every client.
func NewDocsHandler(allowedIPs []string) (*DocsHandler, error) {
	h := &DocsHandler{serve: ginSwagger.WrapHandler(swaggerFiles.Handler)}
	for _, s := range allowedIPs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("swagger allowed ip %q: %w", s, err)
			}
			h.allowed = append(h.allowed, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("swagger allowed ip %q: %w", s, err)
		}
		h.allowed = append(h.allowed, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return h, nil
}

// Serve answers 403 to clients outside the allow-list
func (h *DocsHandler) Serve(c *gin.Context) {
	if !h.permits(c.ClientIP()) {
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access to API documentation is restricted")
		return
	}
	h.serve(c)
}

func (h *DocsHandler) permits(clientIP string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	addr, err := netip.ParseAddr(clientIP)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range h.allowed {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
