package constants

import "fmt"

// Static route constants
const (
	PublicRoute  = "/"
	UploadRoute  = "/upload"
	DocsRoute    = "/docs/api"
	MetricsRoute = "/metrics"
	// Default storage directory for uploaded CSV files, relative to the working dir
	UploadsPath = "uploads"
	// Subdirectory of the upload dir that holds dataset files
	DatasetsPath = "datasets"
)

// DatasetURL is the dashboard page of a processed dataset
func DatasetURL(datasetUUID string) string {
	return fmt.Sprintf("/datasets/%s", datasetUUID)
}

// ChartURL is the image endpoint of one report section; format "" means SVG
func ChartURL(datasetUUID, kind, format string) string {
	url := fmt.Sprintf("/datasets/%s/charts/%s", datasetUUID, kind)
	if format != "" {
		url += "?format=" + format
	}
	return url
}

// ShareURL is the short link of a dataset
func ShareURL(shareLink string) string {
	return fmt.Sprintf("/d/%s", shareLink)
}
