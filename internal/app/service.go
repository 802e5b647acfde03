package app

import (
	"depsentry/internal/adapters"
	"depsentry/internal/ports"
)

type Service struct {
	AlertService ports.AlertServicePort
	Registry     ports.PackageMetadataPort
	Progress     ports.ProgressPort
	Manifests    ports.ManifestPort
	Graphs       ports.GraphPort
	Policies     ports.ScanPolicyPort
}

func NewService(apiURL string, apiToken string, registryURL string) Service {
	return Service{
		AlertService: adapters.NewAlertServiceHTTPAdapter(apiURL, apiToken, 0, -1, 0),
		Registry:     adapters.NewRegistryHTTPAdapter(registryURL, 0),
		Progress:     adapters.NewProgressLogAdapter(),
		Manifests:    adapters.NewManifestFileAdapter(),
		Graphs:       adapters.NewGraphFileAdapter(),
		Policies:     adapters.NewPolicyFileAdapter(),
	}
}
