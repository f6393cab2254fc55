package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
	"gopkg.in/yaml.v3"
)

// ImportFile is the document read by LoadImportFile.
//
//	users:
//	  - username: alice
//	    email: alice@example.com
//	    organization: Acme
type ImportFile struct {
	Users []NewUser `yaml:"users" json:"users"`
}

// ImportResult reports which users an import created and which already existed.
type ImportResult struct {
	Created []*models.User
	Skipped []string
}

// LoadImportFile reads users from a JSON (.json) or YAML (anything else) file.
func LoadImportFile(path string) ([]NewUser, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var doc ImportFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON import file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML import file: %w", err)
		}
	}

	return doc.Users, nil
}

// ImportUsers creates each user through CreateUser, so every created user fires
// the listeners. Existing usernames are skipped; any other error stops the import
// and is returned with the users created so far.
func (r *Registrar) ImportUsers(ctx context.Context, users []NewUser) (*ImportResult, error) {
	result := &ImportResult{}

	for i, in := range users {
		user, err := r.CreateUser(ctx, in)
		if err != nil {
			if errors.Is(err, store.ErrUserAlreadyExists) {
				zerolog.Ctx(ctx).Info().Str("username", in.Username).Msg("User already exists, skipping")
				result.Skipped = append(result.Skipped, in.Username)
				continue
			}
			return result, fmt.Errorf("import entry %d (%s): %w", i+1, in.Username, err)
		}
		result.Created = append(result.Created, user)
	}

	return result, nil
}
