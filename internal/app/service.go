package app

import (
	"time"

	"vsix-sync/internal/adapters"
	"vsix-sync/internal/ports"
)

// Service wires the use-cases to their collaborator ports. Ports whose
// configuration depends on the request (editor CLI name, market directory,
// gallery knobs) are built through factories so tests can substitute
// fakes.
type Service struct {
	Markets      ports.MarketsPort
	GalleryIndex ports.GalleryIndexPort
	NewInstalled func(cli string, disabledFile string) ports.InstalledStatePort
	NewCatalog   func(endpoint string, timeoutSec int, retries int, retryDelayMs int) ports.CatalogPort
	NewStore     func(dir string) ports.ArtifactStorePort
	NewExecutor  func(cli string) ports.ExecutorPort
	Clock        func() time.Time
}

func NewService() Service {
	return Service{
		Markets:      adapters.NewMarketsFileAdapter(),
		GalleryIndex: adapters.NewGalleryIndexAdapter(),
		NewInstalled: func(cli string, disabledFile string) ports.InstalledStatePort {
			return adapters.NewEditorCLIAdapter(cli, disabledFile)
		},
		NewCatalog: func(endpoint string, timeoutSec int, retries int, retryDelayMs int) ports.CatalogPort {
			return adapters.NewGalleryAdapter(endpoint, timeoutSec, retries, retryDelayMs)
		},
		NewStore: func(dir string) ports.ArtifactStorePort {
			return adapters.NewVsixDirAdapter(dir)
		},
		NewExecutor: func(cli string) ports.ExecutorPort {
			return adapters.NewEditorExecAdapter(cli)
		},
		Clock: time.Now,
	}
}
