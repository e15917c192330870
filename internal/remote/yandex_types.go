package remote

// yandexResource is the subset of the Disk resource object we read.
type yandexResource struct {
	Name     string              `json:"name"`
	Path     string              `json:"path"`
	Type     string              `json:"type"`
	Embedded *yandexResourceList `json:"_embedded,omitempty"`
}

type yandexResourceList struct {
	Items  []*Entry `json:"items"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Total  int      `json:"total"`
}
