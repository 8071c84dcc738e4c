package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/leadscout/internal/models"
)

// ReadLeads reads a JSON array of leads from path.
func ReadLeads(path string) ([]models.Lead, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Lead{}, nil
	}

	var leads []models.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, err
	}
	if leads == nil {
		return []models.Lead{}, nil
	}
	return leads, nil
}

// ReadLeadsAllowMissing treats a missing file as empty history.
func ReadLeadsAllowMissing(path string) ([]models.Lead, error) {
	leads, err := ReadLeads(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Lead{}, nil
		}
		return nil, err
	}
	return leads, nil
}

// WriteLeads writes leads as pretty JSON, creating parent directories.
func WriteLeads(path string, leads []models.Lead) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
