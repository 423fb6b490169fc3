package service

import (
	"context"
	"fmt"
	"os"

	"github.com/aussiebroadwan/caronte/pkg/authsdk"
	"gopkg.in/yaml.v3"
)

// RolesFile is the YAML document listing the roles this application
// declares to the identity server:
//
//	roles:
//	  - name: admin
//	    description: Full access
type RolesFile struct {
	Roles []authsdk.RoleDefinition `yaml:"roles"`
}

// LoadRoles reads and validates a roles file.
func LoadRoles(path string) ([]authsdk.RoleDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}

	var f RolesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roles file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(f.Roles))
	for i, r := range f.Roles {
		if r.Name == "" {
			return nil, fmt.Errorf("roles file %s: role %d has no name", path, i)
		}
		if _, dup := seen[r.Name]; dup {
			return nil, fmt.Errorf("roles file %s: duplicate role %q", path, r.Name)
		}
		seen[r.Name] = struct{}{}
	}
	return f.Roles, nil
}

// ConfigurationNotifier is implemented by *authsdk.SDKClient.
type ConfigurationNotifier interface {
	NotifyClientConfiguration(ctx context.Context, cfg authsdk.ClientConfiguration) (string, error)
}

// ClientConfigService declares the application URL and roles to the
// identity server.
type ClientConfigService struct {
	Client         ConfigurationNotifier
	ApplicationURL string
	RolesFile      string
}

// Notify loads the roles file and sends the configuration, returning the
// server's answer.
func (s *ClientConfigService) Notify(ctx context.Context) (string, error) {
	roles, err := LoadRoles(s.RolesFile)
	if err != nil {
		return "", err
	}

	return s.Client.NotifyClientConfiguration(ctx, authsdk.ClientConfiguration{
		ApplicationURL: s.ApplicationURL,
		Roles:          roles,
	})
}
