package controller

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"shawarma-station-me/service"
)

// MenuController handles HTTP requests for the printable menu
type MenuController struct {
	menuService service.MenuServiceInterface
}

// NewMenuController creates a new MenuController
func NewMenuController(menuService service.MenuServiceInterface) *MenuController {
	return &MenuController{
		menuService: menuService,
	}
}

// validMenuFormats is a map of valid format values
var validMenuFormats = map[string]bool{
	"html": true,
	"pdf":  true,
}

// GenerateMenu handles GET /menu?format=pdf|html
// Renders the current catalog as a printable menu.
func (c *MenuController) GenerateMenu(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GenerateMenu: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		log.Printf("❌ GenerateMenu: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}
	if !validMenuFormats[format] {
		log.Printf("❌ GenerateMenu: Invalid format: %s", format)
		http.Error(w, "Invalid format. Valid formats: html, pdf", http.StatusBadRequest)
		return
	}

	ctx := context.Background()

	switch format {
	case "html":
		htmlContent, err := c.menuService.RenderMenuHTML(ctx)
		if err != nil {
			log.Printf("❌ GenerateMenu: Error rendering HTML: %v", err)
			http.Error(w, fmt.Sprintf("Failed to render menu: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(htmlContent)); err != nil {
			log.Printf("❌ GenerateMenu: Error writing HTML response: %v", err)
		}

	case "pdf":
		pdfData, err := c.menuService.GeneratePDF(ctx)
		if err != nil {
			log.Printf("❌ GenerateMenu: Error generating PDF: %v", err)
			http.Error(w, fmt.Sprintf("Failed to generate PDF: %v", err), http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("menu_%s.pdf", time.Now().Format("2006-01-02"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(pdfData); err != nil {
			log.Printf("❌ GenerateMenu: Error writing PDF response: %v", err)
		}
	}

	log.Printf("✅ GenerateMenu: Served menu as %s", format)
}

// RenderMenu handles GET /menu/render
// Returns the menu HTML (used by chromedp for PDF generation).
func (c *MenuController) RenderMenu(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		log.Printf("❌ RenderMenu: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := context.Background()
	htmlContent, err := c.menuService.RenderMenuHTML(ctx)
	if err != nil {
		log.Printf("❌ RenderMenu: Error rendering HTML: %v", err)
		http.Error(w, fmt.Sprintf("Failed to render menu: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(htmlContent)); err != nil {
		log.Printf("❌ RenderMenu: Error writing HTML response: %v", err)
	}
}
