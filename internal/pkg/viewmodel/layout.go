package viewmodel

import "github.com/gofiber/fiber/v2"

const AppTitle = "Consultas dos candidatos das eleições de 2024"

type Layout struct {
	Page        string
	Title       string
	IsError     bool
	IsDev       bool
	Msg         fiber.Map
	OGViewModel *OpenGraph
}

// OpenGraph carries the meta tags used when a dataset link is shared
type OpenGraph struct {
	Title       string
	Description string
	URL         string
}

// PageTitle returns the browser title for a page name
func PageTitle(page string) string {
	if page == "" {
		return AppTitle
	}
	return page + " | " + AppTitle
}
