package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"shawarma-station-me/models"
	"shawarma-station-me/repository"
	"shawarma-station-me/utils"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// MenuService renders the printable menu: the product catalog grouped by
// category, with variant prices formatted in JOD.
type MenuService struct {
	repository repository.ProductRepositoryInterface
	baseURL    string // base URL for the render endpoint, e.g. "http://localhost:8080"
}

// NewMenuService creates a new MenuService
func NewMenuService(repo repository.ProductRepositoryInterface, baseURL string) *MenuService {
	return &MenuService{
		repository: repo,
		baseURL:    baseURL,
	}
}

// Ensure MenuService implements MenuServiceInterface
var _ MenuServiceInterface = (*MenuService)(nil)

// detectChromePath detects the path to Chrome/Chromium executable.
// Checks CHROME_PATH env var first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// menuEntry is one product row on the rendered menu.
type menuEntry struct {
	Name        string
	Description string
	Price       string // single price, empty when the product has variants
	Variants    []menuVariant
	Additions   []menuAddition
}

type menuVariant struct {
	Label string
	Price string
}

type menuAddition struct {
	Name  string
	Price string
}

// menuSection groups entries by product category.
type menuSection struct {
	Category string
	Entries  []menuEntry
}

// buildSections converts the catalog into ordered menu sections. Products
// arrive ordered by category then name, so one linear pass groups them.
func buildSections(products []models.Product) []menuSection {
	var sections []menuSection
	for _, p := range products {
		entry := menuEntry{
			Name:        p.Name,
			Description: p.Description,
		}

		spec := p.PriceSpec()
		if spec.Prices != nil && !spec.Prices.IsEmpty() {
			entry.Variants = variantRows(spec)
		} else {
			entry.Price = utils.FormatJOD(spec.BasePrice)
		}

		for _, a := range p.Additions {
			entry.Additions = append(entry.Additions, menuAddition{
				Name:  a.Name,
				Price: utils.FormatJOD(a.Price),
			})
		}

		if len(sections) == 0 || sections[len(sections)-1].Category != p.Category {
			sections = append(sections, menuSection{Category: p.Category})
		}
		last := &sections[len(sections)-1]
		last.Entries = append(last.Entries, entry)
	}
	return sections
}

// variantRows flattens a price table into labeled rows, matching the shape
// the table actually carries.
func variantRows(spec models.PriceSpec) []menuVariant {
	var rows []menuVariant
	t := spec.Prices

	if len(t.ByProteinType) > 0 {
		for _, protein := range []string{models.ProteinChicken, models.ProteinMeat} {
			types, ok := t.ByProteinType[protein]
			if !ok {
				continue
			}
			for _, typ := range []string{models.TypeSandwich, models.TypeMeal} {
				price, ok := types[typ]
				if !ok {
					continue
				}
				rows = append(rows, menuVariant{
					Label: fmt.Sprintf("%s %s", protein, typ),
					Price: utils.FormatJOD(price),
				})
			}
		}
		return rows
	}

	if len(t.ByProtein) > 0 {
		for _, protein := range []string{models.ProteinChicken, models.ProteinMeat} {
			if price, ok := t.ByProtein[protein]; ok {
				rows = append(rows, menuVariant{Label: protein, Price: utils.FormatJOD(price)})
			}
		}
		return rows
	}

	for _, typ := range []string{models.TypeSandwich, models.TypeMeal} {
		if price, ok := t.ByType[typ]; ok {
			rows = append(rows, menuVariant{Label: typ, Price: utils.FormatJOD(price)})
		}
	}
	return rows
}

// RenderMenuHTML renders the menu HTML template from the available catalog.
func (s *MenuService) RenderMenuHTML(ctx context.Context) (string, error) {
	products, err := s.repository.ListAvailable(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch products: %w", err)
	}

	templateData := struct {
		Sections    []menuSection
		GeneratedAt string
	}{
		Sections:    buildSections(products),
		GeneratedAt: time.Now().Format("2006-01-02"),
	}

	templatePath := filepath.Join("templates", "menu.html")
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// GeneratePDF generates a menu PDF by printing the render endpoint through
// headless Chrome.
func (s *MenuService) GeneratePDF(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
		chromedp.Flag("enable-print-preview", true),
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := fmt.Sprintf("%s/menu/render", s.baseURL)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 1123), // A4 at 96 DPI
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(time.Second), // Wait for fonts and layout
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).   // 210mm in inches
				WithPaperHeight(11.69). // 297mm in inches
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
