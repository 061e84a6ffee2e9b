package service

import "context"

// MenuServiceInterface defines menu rendering operations
type MenuServiceInterface interface {
	RenderMenuHTML(ctx context.Context) (string, error)
	GeneratePDF(ctx context.Context) ([]byte, error)
}
