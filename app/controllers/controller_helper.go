package controllers

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/CandidateLens/internal/pkg/env"
	"github.com/ManuelReschke/CandidateLens/internal/pkg/viewmodel"
)

// GetClientIP determines the client addresses behind proxies.
// Returns the first IPv4 and the first IPv6 address found.
func GetClientIP(c *fiber.Ctx) (string, string) {
	var candidates []string

	// Cloudflare sends the original client first
	if cfIP := strings.TrimSpace(c.Get("CF-Connecting-IP")); cfIP != "" {
		candidates = append(candidates, cfIP)
	}
	for _, ip := range strings.Split(c.Get("X-Forwarded-For"), ",") {
		candidates = append(candidates, strings.TrimSpace(ip))
	}
	candidates = append(candidates, c.IP(), strings.TrimSpace(c.Get("X-Real-IP")))

	ipv4, ipv6 := "", ""
	for _, candidate := range candidates {
		ip := net.ParseIP(candidate)
		if ip == nil {
			continue
		}
		// ::ffff:1.2.3.4 is reported as IPv4
		if v4 := ip.To4(); v4 != nil {
			if ipv4 == "" {
				ipv4 = v4.String()
			}
		} else if ipv6 == "" {
			ipv6 = ip.String()
		}
		if ipv4 != "" && ipv6 != "" {
			break
		}
	}

	return ipv4, ipv6
}

func isHTMXRequest(c *fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

func newLayout(c *fiber.Ctx, page string) viewmodel.Layout {
	return viewmodel.Layout{
		Page:  page,
		Title: viewmodel.PageTitle(page),
		IsDev: env.IsDev(),
		Msg:   flash.Get(c),
	}
}
