package importapi

import (
	"encoding/json"

	"github.com/ternarybob/subimport/internal/models"
)

// envelope is the {"data": ...} wrapper every successful response uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorResponse is the body of a failed request.
type errorResponse struct {
	Message string `json:"message"`
}

// importStatus is the wire form of the import status.
type importStatus struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Imported int    `json:"imported"`
	Status   string `json:"status"`
}

func (s importStatus) toJobState() (*models.JobState, error) {
	status, err := models.ParseJobStatus(s.Status)
	if err != nil {
		return nil, err
	}
	return &models.JobState{
		Status:   status,
		Name:     s.Name,
		Imported: s.Imported,
		Total:    s.Total,
	}, nil
}

// listsPage is the paginated lists response.
type listsPage struct {
	Results []models.List `json:"results"`
	Total   int           `json:"total"`
}
