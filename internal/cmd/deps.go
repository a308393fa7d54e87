package cmd

import (
	"os"

	"github.com/plumvelvet/capacities-cli/internal/api"
	"github.com/plumvelvet/capacities-cli/internal/secrets"
)

var (
	openSecretsStore = secrets.OpenDefault
	newClientFunc    = func(token string, opts ...api.ClientOption) api.CapacitiesAPI {
		return api.NewClient(token, opts...)
	}
	envGet = os.Getenv
)
